package quotations

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// numberSuffixSpace bounds the random suffix. Four digits keeps numbers
// readable over the phone; collisions inside one clinic-day are expected
// occasionally and handled by the retry loop in Create.
const numberSuffixSpace = 10000

// numberSource produces candidate quotation numbers.
type numberSource interface {
	Next(now time.Time) string
}

type numberGenerator struct {
	prefix string
	mu     sync.Mutex
	rnd    *rand.Rand
}

func newNumberGenerator(prefix string) *numberGenerator {
	return &numberGenerator{
		prefix: prefix,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Next produces a candidate quotation number: PREFIX-YYYYMMDD-NNNN.
// Uniqueness is owned by the ux_quotations_clinic_number constraint, not by
// the generator.
func (g *numberGenerator) Next(now time.Time) string {
	g.mu.Lock()
	suffix := g.rnd.Intn(numberSuffixSpace)
	g.mu.Unlock()
	return fmt.Sprintf("%s-%s-%04d", g.prefix, now.UTC().Format("20060102"), suffix)
}
