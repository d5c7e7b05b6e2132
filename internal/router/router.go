package router

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agenticerp/internal/logging"
)

// HelpMessage is returned when no domain keyword matches.
const HelpMessage = "I can help you with various ERP tasks: customers, orders and leads (sales), " +
	"invoices, payments and budgets (finance), stock and suppliers (inventory), " +
	"or reports and KPIs (analytics). Try asking about one of these."

// ErrMissingHandler is returned by NewRouter when a domain has no handler.
var ErrMissingHandler = errors.New("no handler registered for domain")

// Request is what a domain handler receives.
type Request struct {
	Text     string
	Decision RoutingDecision
}

// Response is the outcome of routing one request.
type Response struct {
	Domain     Domain `json:"domain"`
	Confidence int    `json:"confidence"`
	// Agent is the display name of the handler that answered, empty for help responses.
	Agent string `json:"agent,omitempty"`
	Text  string `json:"text"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Handler answers requests for one domain.
type Handler interface {
	Handle(ctx context.Context, req Request) (Response, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, req Request) (Response, error)

func (f HandlerFunc) Handle(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

// Router classifies requests and dispatches them through a fixed table.
type Router struct {
	handlers map[Domain]Handler
	observer func(RoutingDecision)
}

// NewRouter builds a router. Every domain in Domains() must have a handler.
func NewRouter(handlers map[Domain]Handler) (*Router, error) {
	table := make(map[Domain]Handler, len(handlers))
	for _, d := range Domains() {
		h, ok := handlers[d]
		if !ok || h == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingHandler, d)
		}
		table[d] = h
	}
	return &Router{handlers: table}, nil
}

// SetObserver registers a callback invoked with every routing decision.
func (r *Router) SetObserver(fn func(RoutingDecision)) {
	r.observer = fn
}

// Route classifies text and hands it to the matching domain handler.
//
// Unknown requests get HelpMessage. A handler failure is logged and reported
// in Response.Error rather than returned, so a chat loop can carry on; the
// returned error is only set when ctx is already done.
func (r *Router) Route(ctx context.Context, text string) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	decision := Classify(text)
	logging.Routing("Routed to %s (confidence %d, scores sales=%d finance=%d inventory=%d analytics=%d)",
		decision.Domain, decision.Confidence,
		decision.RawScores[DomainSales], decision.RawScores[DomainFinance],
		decision.RawScores[DomainInventory], decision.RawScores[DomainAnalytics])

	if r.observer != nil {
		r.observer(decision)
	}

	if decision.Domain == DomainUnknown {
		return Response{Domain: DomainUnknown, Text: HelpMessage}, nil
	}

	agent := decision.Domain.Title() + " Agent"
	resp, err := r.handlers[decision.Domain].Handle(ctx, Request{Text: strings.TrimSpace(text), Decision: decision})
	if err != nil {
		logging.RoutingError("%s failed: %v", agent, err)
		return Response{
			Domain:     decision.Domain,
			Confidence: decision.Confidence,
			Agent:      agent,
			Error:      fmt.Sprintf("%s error: %v", agent, err),
		}, nil
	}

	resp.Domain = decision.Domain
	resp.Confidence = decision.Confidence
	resp.Agent = agent
	return resp, nil
}
