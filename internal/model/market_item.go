package model

import "time"

// MarketItem records a listing on the marketplace.  Item IDs are
// assigned monotonically per marketplace instance and are independent
// of token numbers.  An item is created when a token is listed and
// mutated exactly once, on sale; there is no delist transition.
// While unsold the OwnerID is nil and custody of the underlying token
// is held by the MARKET account; once sold the OwnerID is the buyer.
//
// Fields:
//  ID           – primary key identifier of the listing.
//  CollectionID – collection of the listed token.
//  TokenNo      – token number within the collection.
//  SellerID     – account that listed the token.
//  OwnerID      – buyer account once sold (nil while unsold).
//  PriceUnits   – asking price in the smallest currency unit (> 0).
//  Category     – caller-supplied classification tag, unvalidated.
//  Editions     – quantity supplied at listing time; reserved for
//                 multi-edition support, sale semantics are one unit.
//  Sold         – whether the sale has been finalized.
//  CreatedAt    – timestamp when the item was listed.
//  UpdatedAt    – timestamp of last state change.
type MarketItem struct {
    ID           uint64    // market_items.id
    CollectionID uint64    // market_items.collection_id
    TokenNo      uint64    // market_items.token_no
    SellerID     uint64    // market_items.seller_id
    OwnerID      *uint64   // market_items.owner_id (nullable)
    PriceUnits   uint64    // market_items.price_units
    Category     uint32    // market_items.category
    Editions     uint32    // market_items.editions
    Sold         bool      // market_items.sold
    CreatedAt    time.Time // market_items.created_at
    UpdatedAt    time.Time // market_items.updated_at
}
