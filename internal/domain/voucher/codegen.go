package voucher

import (
	"context"
	"crypto/rand"
	"math/big"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
)

const codeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Sized for the realistic voucher population of a single store; at this
// capacity the filter keeps the false-positive rate below 0.1%.
const (
	bloomCapacity = 1_000_000
	bloomFPR      = 0.001
)

// CodeGenerator produces fixed-length uppercase alphanumeric codes that do
// not collide with any stored voucher code.
//
// A bloom filter of issued codes screens candidates before touching the
// repository: a negative membership test proves the code is fresh, so only
// the rare false positive pays for a repository lookup. The generator retries
// until a unique code is found; with 36^6 possible codes the retry loop is
// effectively bounded.
type CodeGenerator struct {
	repo Repository

	mu     sync.Mutex
	filter *bloom.BloomFilter
}

// NewCodeGenerator creates a CodeGenerator backed by the given repository.
func NewCodeGenerator(repo Repository) *CodeGenerator {
	return &CodeGenerator{
		repo:   repo,
		filter: bloom.NewWithEstimates(bloomCapacity, bloomFPR),
	}
}

// Warm seeds the bloom filter with already-issued codes, typically on startup.
func (g *CodeGenerator) Warm(codes []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, code := range codes {
		g.filter.AddString(code)
	}
}

// Generate returns a fresh code absent from the stored voucher set and
// records it in the bloom filter.
func (g *CodeGenerator) Generate(ctx context.Context) (string, error) {
	for {
		code, err := randomCode()
		if err != nil {
			return "", err
		}

		g.mu.Lock()
		maybeSeen := g.filter.TestString(code)
		g.mu.Unlock()
		if maybeSeen {
			// Likely taken (or a rare false positive); cheaper to draw a new
			// candidate than to ask the repository.
			continue
		}

		// The filter only knows codes issued or warmed through this process;
		// confirm against the store before handing the code out.
		exists, err := g.repo.CodeExists(ctx, code)
		if err != nil {
			return "", errors.Wrap(err, "check code existence")
		}

		g.mu.Lock()
		g.filter.AddString(code)
		g.mu.Unlock()

		if exists {
			continue
		}
		return code, nil
	}
}

func randomCode() (string, error) {
	buf := make([]byte, CodeLength)
	max := big.NewInt(int64(len(codeChars)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", errors.Wrap(err, "read random")
		}
		buf[i] = codeChars[n.Int64()]
	}
	return string(buf), nil
}
