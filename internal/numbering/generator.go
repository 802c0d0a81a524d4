// Package numbering produces the human-readable document numbers in the
// {PREFIX}-{YYYYMMDD}-{SUFFIX} format. The random suffix keeps collisions
// unlikely but not impossible, so allocation always verifies the candidate
// against the store and retries a bounded number of times.
package numbering

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/tradeforge/tradedocs-backend/pkg/clock"
	"github.com/tradeforge/tradedocs-backend/pkg/enums"
	apperrors "github.com/tradeforge/tradedocs-backend/pkg/errors"
)

const (
	suffixLength  = 8
	suffixCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	datePattern   = "20060102"
)

// Generator mints candidate document numbers. It does not guarantee
// uniqueness on its own.
type Generator struct {
	clock clock.Clock
}

// NewGenerator returns a generator using the provided clock for the date part.
func NewGenerator(clk clock.Clock) (*Generator, error) {
	if clk == nil {
		return nil, fmt.Errorf("clock is required")
	}
	return &Generator{clock: clk}, nil
}

// Next produces one candidate number for the document type.
func (g *Generator) Next(docType enums.DocumentType) (string, error) {
	if !docType.IsValid() {
		return "", apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid document type %q", docType))
	}
	suffix, err := randomSuffix()
	if err != nil {
		return "", fmt.Errorf("generating number suffix: %w", err)
	}
	date := g.clock.Now().UTC().Format(datePattern)
	return fmt.Sprintf("%s-%s-%s", docType.NumberPrefix(), date, suffix), nil
}

// suffixByteLimit is the largest multiple of len(suffixCharset) that fits in
// a byte. Bytes at or above it are discarded so no charset character is more
// likely than another.
const suffixByteLimit = byte(256 / len(suffixCharset) * len(suffixCharset))

func randomSuffix() (string, error) {
	out := make([]byte, 0, suffixLength)
	buf := make([]byte, suffixLength)
	for len(out) < suffixLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= suffixByteLimit {
				continue
			}
			out = append(out, suffixCharset[int(b)%len(suffixCharset)])
			if len(out) == suffixLength {
				break
			}
		}
	}
	return string(out), nil
}

// ExistsFunc reports whether a number is already taken in the store.
type ExistsFunc func(ctx context.Context, number string) (bool, error)

// Allocator pairs a generator with a store-backed uniqueness check.
type Allocator struct {
	generator  *Generator
	exists     ExistsFunc
	maxRetries int
}

// NewAllocator wires an allocator. maxRetries bounds how many fresh
// candidates are tried after a collision before giving up.
func NewAllocator(generator *Generator, exists ExistsFunc, maxRetries int) (*Allocator, error) {
	if generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if exists == nil {
		return nil, fmt.Errorf("exists check is required")
	}
	if maxRetries <= 0 {
		return nil, fmt.Errorf("max retries must be positive")
	}
	return &Allocator{generator: generator, exists: exists, maxRetries: maxRetries}, nil
}

// Allocate returns a number verified as unused at check time, along with how
// many retries collisions forced. Exhausting the retry budget fails with a
// numbering collision error.
func (a *Allocator) Allocate(ctx context.Context, docType enums.DocumentType) (string, int, error) {
	retries := 0
	for attempt := 0; attempt <= a.maxRetries; attempt++ {
		number, err := a.generator.Next(docType)
		if err != nil {
			return "", retries, err
		}
		taken, err := a.exists(ctx, number)
		if err != nil {
			return "", retries, fmt.Errorf("checking number uniqueness: %w", err)
		}
		if !taken {
			return number, retries, nil
		}
		retries++
	}
	return "", retries, apperrors.New(
		apperrors.CodeNumberingCollision,
		fmt.Sprintf("could not allocate a unique %s number after %d retries", docType, a.maxRetries),
	)
}
