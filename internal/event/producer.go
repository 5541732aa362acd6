// Package event publishes storefront change notifications to Kafka.
package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Nehra4u/Crystal-Ecommerce/internal/cart"
	"github.com/Nehra4u/Crystal-Ecommerce/internal/checkout"
	"github.com/Nehra4u/Crystal-Ecommerce/internal/wishlist"
	apperrors "github.com/Nehra4u/Crystal-Ecommerce/pkg/errors"
	pkgkafka "github.com/Nehra4u/Crystal-Ecommerce/pkg/kafka"
	"github.com/Nehra4u/Crystal-Ecommerce/pkg/logger"
)

// Kafka topics for storefront events.
const (
	TopicCartUpdated     = "crystal.cart.updated"
	TopicWishlistUpdated = "crystal.wishlist.updated"
	TopicOrderRequested  = "crystal.checkout.order_requested"
)

// Aggregate types.
const (
	AggregateTypeCart     = "cart"
	AggregateTypeWishlist = "wishlist"
	AggregateTypeOrder    = "order"
)

// SourceStorefront identifies events originating from this service.
const SourceStorefront = "storefront"

const defaultPublishTimeout = 5 * time.Second

// Publisher sends an event envelope to a topic. *pkgkafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

type discard struct{}

func (discard) Publish(context.Context, string, *pkgkafka.Event) error { return nil }

// Discard is a Publisher that drops every event. It is used when Kafka is
// disabled so order references are still generated.
var Discard Publisher = discard{}

// CartLineData is one cart line within cart events.
type CartLineData struct {
	LineID   string `json:"line_id"`
	ItemID   string `json:"item_id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	GiftBag  bool   `json:"gift_bag"`
	GiftBox  bool   `json:"gift_box"`
	Total    int64  `json:"total"`
}

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	ClientID    string         `json:"client_id"`
	Step        string         `json:"step"`
	Items       []CartLineData `json:"items"`
	ItemCount   int            `json:"item_count"`
	TotalAmount int64          `json:"total_amount"`
}

// WishlistUpdatedData is the payload for a wishlist.updated event.
type WishlistUpdatedData struct {
	ClientID  string   `json:"client_id"`
	ItemIDs   []string `json:"item_ids"`
	ItemCount int      `json:"item_count"`
}

// OrderRequestedData is the payload for a checkout.order_requested event.
type OrderRequestedData struct {
	ClientID string                   `json:"client_id"`
	Items    []CartLineData           `json:"items"`
	Shipping checkout.ShippingDetails `json:"shipping"`
	Method   string                   `json:"method"`
	Subtotal int64                    `json:"subtotal"`
	Freight  int64                    `json:"shipping_amount"`
	Tax      int64                    `json:"tax"`
	Total    int64                    `json:"total"`
}

// Producer publishes storefront domain events.
type Producer struct {
	publisher Publisher
	timeout   time.Duration
	logger    *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(publisher Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		publisher: publisher,
		timeout:   defaultPublishTimeout,
		logger:    logger,
	}
}

func lines(items []cart.LineItem) []CartLineData {
	out := make([]CartLineData, len(items))
	for i, l := range items {
		out[i] = CartLineData{
			LineID:   l.LineID,
			ItemID:   l.Item.ID,
			Name:     l.Item.Name,
			Price:    l.Item.Price,
			Quantity: l.Quantity,
			GiftBag:  l.Options.GiftBag,
			GiftBox:  l.Options.GiftBox,
			Total:    l.Total(),
		}
	}
	return out
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) (*pkgkafka.Event, error) {
	evt, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceStorefront, data,
		pkgkafka.WithCorrelation(logger.CorrelationIDFromContext(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create %s event: %w", topic, err)
	}
	if err := p.publisher.Publish(ctx, topic, evt); err != nil {
		return nil, fmt.Errorf("publish %s event: %w", topic, err)
	}
	return evt, nil
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, clientID string, st cart.State) error {
	data := CartUpdatedData{
		ClientID:    clientID,
		Step:        string(st.Step),
		Items:       lines(st.Items),
		ItemCount:   st.TotalItems(),
		TotalAmount: st.TotalPrice(),
	}
	if _, err := p.publish(ctx, TopicCartUpdated, clientID, AggregateTypeCart, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("client_id", clientID),
		slog.Int("item_count", data.ItemCount),
	)
	return nil
}

// PublishWishlistUpdated publishes a wishlist.updated event.
func (p *Producer) PublishWishlistUpdated(ctx context.Context, clientID string, st wishlist.State) error {
	ids := make([]string, len(st.Items))
	for i, item := range st.Items {
		ids[i] = item.ID
	}
	data := WishlistUpdatedData{ClientID: clientID, ItemIDs: ids, ItemCount: len(ids)}
	if _, err := p.publish(ctx, TopicWishlistUpdated, clientID, AggregateTypeWishlist, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published wishlist.updated event",
		slog.String("client_id", clientID),
		slog.Int("item_count", data.ItemCount),
	)
	return nil
}

// ConfirmOrder publishes a checkout.order_requested event and returns its
// event id as the order reference.
func (p *Producer) ConfirmOrder(ctx context.Context, req checkout.OrderRequest) (string, error) {
	data := OrderRequestedData{
		ClientID: req.ClientID,
		Items:    lines(req.Items),
		Shipping: req.Shipping,
		Method:   req.Quote.Method,
		Subtotal: req.Quote.Subtotal,
		Freight:  req.Quote.Shipping,
		Tax:      req.Quote.Tax,
		Total:    req.Quote.Total,
	}
	evt, err := p.publish(ctx, TopicOrderRequested, req.ClientID, AggregateTypeOrder, data)
	if err != nil {
		p.logger.ErrorContext(ctx, "order request not published",
			slog.String("client_id", req.ClientID),
			slog.String("error", err.Error()),
		)
		return "", apperrors.Unavailable("order could not be submitted, try again")
	}

	p.logger.InfoContext(ctx, "published checkout.order_requested event",
		slog.String("client_id", req.ClientID),
		slog.String("reference", evt.EventID),
	)
	return evt.EventID, nil
}

// CartSubscriber returns a cart store subscriber that publishes every new
// state. Failures are logged and dropped.
func (p *Producer) CartSubscriber(clientID string) func(cart.State) {
	return func(st cart.State) {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		if err := p.PublishCartUpdated(ctx, clientID, st); err != nil {
			p.logger.Warn("cart event dropped",
				slog.String("client_id", clientID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// WishlistSubscriber is the wishlist counterpart of CartSubscriber.
func (p *Producer) WishlistSubscriber(clientID string) func(wishlist.State) {
	return func(st wishlist.State) {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		if err := p.PublishWishlistUpdated(ctx, clientID, st); err != nil {
			p.logger.Warn("wishlist event dropped",
				slog.String("client_id", clientID),
				slog.String("error", err.Error()),
			)
		}
	}
}

var _ checkout.OrderConfirmer = (*Producer)(nil)
