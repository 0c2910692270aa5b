// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names for the marketplace event outbox.  Both queues are durable;
// external indexers consume them independently of the API process.
const (
    ItemCreatedQueue = "market.item.created"
    ItemSoldQueue    = "market.item.sold"
)

// MarketItemCreatedEvent is published when a token is listed on the
// marketplace.  OwnerID is always 0: a freshly listed item has no owner
// of record until it sells.  Downstream consumers can index listings
// without querying the primary database.
type MarketItemCreatedEvent struct {
    ItemID       uint64 `json:"item_id"`
    CollectionID uint64 `json:"collection_id"`
    TokenNo      uint64 `json:"token_no"`
    SellerID     uint64 `json:"seller_id"`
    OwnerID      uint64 `json:"owner_id"` // always 0 at listing time
    PriceUnits   uint64 `json:"price_units"`
    Category     uint32 `json:"category"`
    CreatedAt    string `json:"created_at"`
}

// MarketItemSoldEvent is published when a sale finalizes.  SellerID is
// cleared to 0 in the published payload; the buyer is the new owner of
// record and the only party consumers need.
type MarketItemSoldEvent struct {
    ItemID       uint64 `json:"item_id"`
    CollectionID uint64 `json:"collection_id"`
    TokenNo      uint64 `json:"token_no"`
    SellerID     uint64 `json:"seller_id"` // always 0 in the sold event
    BuyerID      uint64 `json:"buyer_id"`
    PriceUnits   uint64 `json:"price_units"`
    SoldAt       string `json:"sold_at"`
}
