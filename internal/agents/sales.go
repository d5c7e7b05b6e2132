package agents

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"agenticerp/internal/logging"
	"agenticerp/internal/router"
	"agenticerp/internal/store"
	"agenticerp/internal/types"
)

// SalesIntent is the sub-classification of a sales request.
type SalesIntent string

const (
	IntentLead     SalesIntent = "lead"
	IntentOrder    SalesIntent = "order"
	IntentSupport  SalesIntent = "support"
	IntentCustomer SalesIntent = "customer"
	IntentUnknown  SalesIntent = "unknown"
)

// ClassifySales picks the sales intent. Checks run in order: lead, order,
// ticket or support, customer or client.
func ClassifySales(text string) SalesIntent {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "lead"):
		return IntentLead
	case strings.Contains(t, "order"):
		return IntentOrder
	case strings.Contains(t, "ticket"), strings.Contains(t, "support"):
		return IntentSupport
	case strings.Contains(t, "customer"), strings.Contains(t, "client"):
		return IntentCustomer
	default:
		return IntentUnknown
	}
}

// Clarify formats a clarification request.
func Clarify(question string) string {
	return "Clarification needed: " + question
}

var (
	customerRef = regexp.MustCompile(`(?i)\b(?:customer|client)\s+#?(\d+)`)
	orderRef    = regexp.MustCompile(`(?i)\border\s+#?(\d+)`)
	emailRef    = regexp.MustCompile(`[\w.+-]+@[\w-]+(?:\.[\w-]+)+`)
	leadStatus  = []string{"new", "contacted", "qualified", "lost", "won"}
)

func refID(re *regexp.Regexp, text string) int64 {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	id, _ := strconv.ParseInt(m[1], 10, 64)
	return id
}

// SalesAgent answers customer, order and lead questions from the store.
type SalesAgent struct {
	dir Directory
	narrator
}

func NewSalesAgent(dir Directory, llm types.LLMClient) *SalesAgent {
	return &SalesAgent{dir: dir, narrator: narrator{llm: llm, system: SalesSystemPrompt}}
}

func (a *SalesAgent) Handle(ctx context.Context, req router.Request) (router.Response, error) {
	intent := ClassifySales(req.Text)
	logging.AgentsDebug("Sales intent %s for %q", intent, req.Text)

	var (
		text string
		data any
		err  error
	)
	switch intent {
	case IntentLead:
		text, data, err = a.leads(ctx, req.Text)
	case IntentOrder:
		text, data, err = a.orders(ctx, req.Text)
	case IntentCustomer:
		text, data, err = a.customers(ctx, req.Text)
	case IntentSupport:
		return router.Response{Text: Clarify("support tickets are not tracked here yet. Which customer or order is this about?")}, nil
	default:
		return router.Response{Text: Clarify("do you want to see customers, orders or leads?")}, nil
	}
	if err != nil {
		return router.Response{}, err
	}

	return router.Response{Text: a.narrate(ctx, req.Text, text), Data: data}, nil
}

func (a *SalesAgent) customers(ctx context.Context, text string) (string, any, error) {
	f := store.CustomerFilter{ID: refID(customerRef, text)}
	if email := emailRef.FindString(text); email != "" {
		f.Email = email
	}
	customers, err := a.dir.Customers(ctx, f)
	if err != nil {
		return "", nil, fmt.Errorf("customer lookup: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Customers (%d):\n", len(customers))
	if len(customers) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, c := range customers {
		fmt.Fprintf(&b, "  #%d %s", c.ID, c.Name)
		if c.Email != "" {
			fmt.Fprintf(&b, " <%s>", c.Email)
		}
		if c.Phone != "" {
			fmt.Fprintf(&b, " %s", c.Phone)
		}
		b.WriteByte('\n')
	}
	return b.String(), customers, nil
}

func (a *SalesAgent) orders(ctx context.Context, text string) (string, any, error) {
	f := store.OrderFilter{
		ID:         refID(orderRef, text),
		CustomerID: refID(customerRef, text),
	}
	orders, err := a.dir.Orders(ctx, f)
	if err != nil {
		return "", nil, fmt.Errorf("order lookup: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Orders (%d):\n", len(orders))
	if len(orders) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, o := range orders {
		fmt.Fprintf(&b, "  #%d customer %d - %s - $%s\n", o.ID, o.CustomerID, o.Status, o.Total.StringFixed(2))
	}
	return b.String(), orders, nil
}

func (a *SalesAgent) leads(ctx context.Context, text string) (string, any, error) {
	f := store.LeadFilter{Email: emailRef.FindString(text)}
	lower := strings.ToLower(text)
	for _, s := range leadStatus {
		if strings.Contains(lower, s+" lead") {
			f.Status = s
			break
		}
	}
	leads, err := a.dir.Leads(ctx, f)
	if err != nil {
		return "", nil, fmt.Errorf("lead lookup: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Leads (%d):\n", len(leads))
	if len(leads) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, l := range leads {
		score := "unscored"
		if l.Score != nil {
			score = fmt.Sprintf("score %.2f", *l.Score)
		}
		fmt.Fprintf(&b, "  #%d %s - %s - %s\n", l.ID, l.ContactEmail, l.Status, score)
	}
	return b.String(), leads, nil
}
