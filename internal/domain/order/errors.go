package order

import "fmt"

// ProductNotFoundError indicates a requested product does not exist.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// InvalidQuantityError indicates a line item with a quantity below 1.
type InvalidQuantityError struct {
	ProductID int64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be at least 1 for product %d", e.ProductID)
}

// InvalidColorError indicates a requested color outside the product's
// declared color list.
type InvalidColorError struct {
	ProductID int64
	Color     string
}

func (e *InvalidColorError) Error() string {
	return fmt.Sprintf("color %q not available for product %d", e.Color, e.ProductID)
}

// InvalidStorageError indicates a requested storage option outside the
// product's declared storage list.
type InvalidStorageError struct {
	ProductID int64
	Storage   string
}

func (e *InvalidStorageError) Error() string {
	return fmt.Sprintf("storage %q not available for product %d", e.Storage, e.ProductID)
}

// StorageModifierMismatchError indicates the client quoted a per-variant
// surcharge that no longer matches the product's modifier for the selected
// storage option, typically a stale price quote.
type StorageModifierMismatchError struct {
	ProductID int64
	Storage   string
	Supplied  string
	Expected  string
}

func (e *StorageModifierMismatchError) Error() string {
	return fmt.Sprintf("storage modifier %s does not match %s for product %d option %q",
		e.Supplied, e.Expected, e.ProductID, e.Storage)
}
