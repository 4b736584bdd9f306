// Package barcode generates the identifiers printed on ingredient and product
// labels. Rendering labels is handled elsewhere.
package barcode

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"
)

const ingredientPrefix = "978"

// Generator is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

func NewGenerator() *Generator {
	return &Generator{
		rnd: rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64())),
		now: time.Now,
	}
}

// NewSeededGenerator is deterministic; tests use it with a fixed clock.
func NewSeededGenerator(seed uint64, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), now: now}
}

// Ingredient returns a 12-digit UPC-A code: prefix, eight random digits and
// the check digit.
func (g *Generator) Ingredient() string {
	digits := ingredientPrefix + g.digits(8)
	return digits + strconv.Itoa(CheckDigit(digits))
}

// Product returns PRD, the last ten digits of the millisecond clock and two
// random digits.
func (g *Generator) Product() string {
	ms := strconv.FormatInt(g.now().UnixMilli(), 10)
	if len(ms) > 10 {
		ms = ms[len(ms)-10:]
	}
	return "PRD" + ms + g.digits(2)
}

func (g *Generator) Batch() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fmt.Sprintf("BATCH%d", 1000+g.rnd.IntN(9000))
}

func (g *Generator) digits(n int) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(byte('0' + g.rnd.IntN(10)))
	}
	return b.String()
}

// CheckDigit computes the UPC-A check digit for the first eleven digits.
func CheckDigit(digits string) int {
	odd, even := 0, 0
	for i := 0; i < 11 && i < len(digits); i++ {
		d := int(digits[i] - '0')
		if i%2 == 0 {
			odd += d
		} else {
			even += d
		}
	}
	return (10 - (odd*3+even)%10) % 10
}

func ValidUPC(code string) bool {
	if len(code) != 12 {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return int(code[11]-'0') == CheckDigit(code[:11])
}
