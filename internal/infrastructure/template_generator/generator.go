package template_generator

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/kurochkinivan/stego_portal/internal/domain"
)

const (
	firstTransactionID = 1001
	dateLayout         = "01/02/2006"
)

var (
	transactionTypes = []string{"Deposit", "Withdrawal", "Bet", "Win"}
	currencies       = []string{"USD", "EUR", "GBP", "JPY"}
	statuses         = []string{"Pending", "Completed", "Failed"}
	paymentMethods   = []string{"Credit Card", "Bank Transfer", "PayPal", "Crypto"}
	notes            = []string{"First", "Second", "Third", "Fourth", "Fifth"}

	startDate = time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	endDate   = time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// Generator produces sample transaction CSVs in the layout the backend expects.
// It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand

	// reseed restarts rnd on every call when set
	reseed func() *rand.Rand
}

func New() *Generator {
	return &Generator{rnd: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeeded returns a generator that yields the same rows on every call.
func NewSeeded(seed uint64) *Generator {
	reseed := func() *rand.Rand {
		return rand.New(rand.NewPCG(seed, seed))
	}

	return &Generator{rnd: reseed(), reseed: reseed}
}

func (g *Generator) Transactions(n int) []*domain.Transaction {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.reseed != nil {
		g.rnd = g.reseed()
	}

	days := int(endDate.Sub(startDate).Hours() / 24)

	transactions := make([]*domain.Transaction, 0, n)
	for i := range n {
		transactions = append(transactions, &domain.Transaction{
			TransactionID: firstTransactionID + i,
			UserID:        g.between(500, 1000),
			Amount:        g.between(100, 100000),
			Date:          startDate.AddDate(0, 0, g.rnd.IntN(days+1)).Format(dateLayout),
			Type:          pick(g.rnd, transactionTypes),
			GameID:        g.between(100, 200),
			Currency:      pick(g.rnd, currencies),
			Status:        pick(g.rnd, statuses),
			PaymentMethod: pick(g.rnd, paymentMethods),
			Notes:         pick(g.rnd, notes),
		})
	}

	return transactions
}

// WriteTemplate writes the header and n sample rows.
func (g *Generator) WriteTemplate(w io.Writer, n int) error {
	if n < 0 {
		return fmt.Errorf("invalid rows count %d", n)
	}

	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	if err := enc.EncodeHeader(domain.Transaction{}); err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}

	for _, t := range g.Transactions(n) {
		if err := enc.Encode(t); err != nil {
			return fmt.Errorf("failed to encode transaction %d: %w", t.TransactionID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	return nil
}

// between returns a value in [lo;hi].
func (g *Generator) between(lo, hi int) int {
	return lo + g.rnd.IntN(hi-lo+1)
}

func pick(rnd *rand.Rand, values []string) string {
	return values[rnd.IntN(len(values))]
}
