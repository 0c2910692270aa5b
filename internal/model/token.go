package model

import "time"

// Token describes a single minted token.  Tokens are uniquely
// identified by their collection and token number; the number is
// assigned monotonically per collection and never reused.  Tokens
// are never destroyed.  While a token is listed on the market its
// owner is the MARKET custody account.
//
// Fields:
//  ID           – surrogate primary key.
//  CollectionID – collection the token belongs to.
//  TokenNo      – per-collection monotonic token number (starts at 1).
//  OwnerID      – current owner account.
//  URI          – opaque metadata reference supplied at mint time.
//  CreatedAt    – timestamp when the token was minted.
//  UpdatedAt    – timestamp of last ownership change.
type Token struct {
    ID           uint64    // tokens.id
    CollectionID uint64    // tokens.collection_id
    TokenNo      uint64    // tokens.token_no
    OwnerID      uint64    // tokens.owner_id
    URI          string    // tokens.uri
    CreatedAt    time.Time // tokens.created_at
    UpdatedAt    time.Time // tokens.updated_at
}
