package model

import "time"

// Collection represents an independent token collection deployed through
// the collection factory.  Each collection belongs to one creator and
// numbers its tokens independently, starting at 1.  Repeated
// (name, symbol) pairs are allowed and produce distinct collections.
//
// Fields:
//  ID          – primary key identifier.
//  CreatorID   – account that created the collection.
//  Name        – display name of the collection.
//  Symbol      – short ticker-style symbol.
//  NextTokenNo – token number the next mint will receive.
//  CreatedAt   – timestamp when the collection was created.
//  UpdatedAt   – timestamp of last update.
type Collection struct {
    ID          uint64    // collections.id
    CreatorID   uint64    // collections.creator_id
    Name        string    // collections.name
    Symbol      string    // collections.symbol
    NextTokenNo uint64    // collections.next_token_no
    CreatedAt   time.Time // collections.created_at
    UpdatedAt   time.Time // collections.updated_at
}
