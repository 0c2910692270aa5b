package handler

import (
    "errors"
    "log"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/forgefinance/nft-marketplace/internal/model"
    "github.com/forgefinance/nft-marketplace/internal/queue"
    "github.com/forgefinance/nft-marketplace/internal/repository"
    queue_publisher "github.com/forgefinance/nft-marketplace/internal/service"
)

// MarketHandler groups the repositories required to run the market-item
// lifecycle: listing-fee governance, item creation, sales and the
// role-filtered query views. All methods assume JWT authentication and
// role validation have been performed by middleware where required.
// Mutations run inside repository transactions to guarantee atomicity;
// events are published only after the transaction commits.
type MarketHandler struct {
    Market *repository.MarketRepo
    Tokens *repository.TokenRepo
}

// NewMarketHandler constructs a MarketHandler with the provided
// repositories. All dependencies must be non-nil.
func NewMarketHandler(market *repository.MarketRepo, tokens *repository.TokenRepo) *MarketHandler {
    if market == nil || tokens == nil {
        panic("nil repository passed to NewMarketHandler")
    }
    return &MarketHandler{Market: market, Tokens: tokens}
}

type itemResp struct {
    ID           uint64    `json:"id"`
    CollectionID uint64    `json:"collection_id"`
    TokenNo      uint64    `json:"token_no"`
    SellerID     uint64    `json:"seller_id"`
    OwnerID      uint64    `json:"owner_id"` // 0 while unsold
    PriceUnits   uint64    `json:"price_units"`
    Category     uint32    `json:"category"`
    Editions     uint32    `json:"editions"`
    Sold         bool      `json:"sold"`
    CreatedAt    time.Time `json:"created_at"`
}

func toItemResp(it *model.MarketItem) itemResp {
    r := itemResp{
        ID:           it.ID,
        CollectionID: it.CollectionID,
        TokenNo:      it.TokenNo,
        SellerID:     it.SellerID,
        PriceUnits:   it.PriceUnits,
        Category:     it.Category,
        Editions:     it.Editions,
        Sold:         it.Sold,
        CreatedAt:    it.CreatedAt,
    }
    if it.OwnerID != nil {
        r.OwnerID = *it.OwnerID
    }
    return r
}

// GetListingPrice handles GET /v1/market/listing-price. Public.
func (h *MarketHandler) GetListingPrice(c echo.Context) error {
    price, err := h.Market.GetListingPrice(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"listing_price_units": price})
}

// UpdateListingPrice handles PUT /v1/market/listing-price. The route is
// gated on the OPERATOR role; an ungated fee setter is a security
// defect, so the restriction holds even though no client currently
// exercises the rejection path.
func (h *MarketHandler) UpdateListingPrice(c echo.Context) error {
    var body struct {
        Price *uint64 `json:"price"`
    }
    if err := c.Bind(&body); err != nil || body.Price == nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "price is required"})
    }
    if err := h.Market.UpdateListingPrice(c.Request().Context(), *body.Price); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"listing_price_units": *body.Price})
}

// CreateItem handles POST /v1/market/items. It lists a token the caller
// owns: custody moves to the market account, an unsold item row is
// created, and a MarketItemCreated event is published for external
// indexers. quantity is stored as editions; sale semantics remain one
// effective unit per listing.
func (h *MarketHandler) CreateItem(c echo.Context) error {
    sellerID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var body struct {
        CollectionID uint64 `json:"collection_id"`
        TokenNo      uint64 `json:"token_no"`
        Price        uint64 `json:"price"`
        Category     uint32 `json:"category"`
        Quantity     uint32 `json:"quantity"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.CollectionID == 0 || body.TokenNo == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "collection_id and token_no are required"})
    }
    if body.Price == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must be positive"})
    }
    if body.Quantity == 0 {
        body.Quantity = 1
    }

    item, err := h.Market.CreateItem(c.Request().Context(), body.CollectionID, body.TokenNo, sellerID, body.Price, body.Category, body.Quantity)
    if err != nil {
        switch {
        case errors.Is(err, repository.ErrTokenNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "token not found"})
        case errors.Is(err, repository.ErrNotTokenOwner):
            return c.JSON(http.StatusForbidden, echo.Map{"error": "caller does not own this token"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "listing failed"})
    }

    // Best effort: the listing is committed, a broker outage must not
    // fail the request.
    ev := queue.MarketItemCreatedEvent{
        ItemID:       item.ID,
        CollectionID: item.CollectionID,
        TokenNo:      item.TokenNo,
        SellerID:     item.SellerID,
        OwnerID:      0,
        PriceUnits:   item.PriceUnits,
        Category:     item.Category,
        CreatedAt:    item.CreatedAt.UTC().Format(time.RFC3339),
    }
    if err := queue_publisher.PublishItemCreated(c.Request().Context(), ev); err != nil {
        log.Printf("market: publish item created event failed: %v", err)
    }

    return c.JSON(http.StatusCreated, toItemResp(item))
}

// CreateSale handles POST /v1/market/items/:id/sale. The payment field
// must equal the listed price exactly; the repository settles balances,
// moves custody to the buyer and marks the item sold in one
// transaction. A MarketItemSold event is published after commit with
// the seller cleared to zero.
func (h *MarketHandler) CreateSale(c echo.Context) error {
    buyerID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    itemID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
    }
    var body struct {
        Payment uint64 `json:"payment"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }

    item, err := h.Market.Sale(c.Request().Context(), itemID, buyerID, body.Payment)
    if err != nil {
        switch {
        case errors.Is(err, repository.ErrItemNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "market item not found"})
        case errors.Is(err, repository.ErrAlreadySold):
            return c.JSON(http.StatusConflict, echo.Map{"error": "item already sold"})
        case errors.Is(err, repository.ErrPaymentMismatch):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment must equal the listed price"})
        case errors.Is(err, repository.ErrInsufficientFunds):
            return c.JSON(http.StatusPaymentRequired, echo.Map{"error": "insufficient funds"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sale failed"})
    }

    ev := queue.MarketItemSoldEvent{
        ItemID:       item.ID,
        CollectionID: item.CollectionID,
        TokenNo:      item.TokenNo,
        SellerID:     0,
        BuyerID:      buyerID,
        PriceUnits:   item.PriceUnits,
        SoldAt:       time.Now().UTC().Format(time.RFC3339),
    }
    if err := queue_publisher.PublishItemSold(c.Request().Context(), ev); err != nil {
        log.Printf("market: publish item sold event failed: %v", err)
    }

    return c.JSON(http.StatusOK, toItemResp(item))
}

// Transfer handles POST /v1/market/items/:id/transfer. Only the current
// owner of record of the underlying token may move it, and only after
// the item has sold.
func (h *MarketHandler) Transfer(c echo.Context) error {
    callerID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    itemID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
    }
    var body struct {
        To uint64 `json:"to"`
    }
    if err := c.Bind(&body); err != nil || body.To == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "to account is required"})
    }

    if err := h.Market.TransferToken(c.Request().Context(), itemID, callerID, body.To); err != nil {
        switch {
        case errors.Is(err, repository.ErrItemNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "market item not found"})
        case errors.Is(err, repository.ErrAccountNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "destination account not found"})
        case errors.Is(err, repository.ErrForbidden):
            return c.JSON(http.StatusForbidden, echo.Map{"error": "item has not been sold"})
        case errors.Is(err, repository.ErrNotTokenOwner):
            return c.JSON(http.StatusForbidden, echo.Map{"error": "caller does not own this token"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transfer failed"})
    }
    return c.NoContent(http.StatusNoContent)
}

// FetchMarketItems handles GET /v1/market/items. Public; returns all
// unsold listings. Never errors for an empty marketplace.
func (h *MarketHandler) FetchMarketItems(c echo.Context) error {
    items, err := h.Market.FetchMarketItems(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": toItemResps(items)})
}

// FetchMyItems handles GET /v1/market/my-items: listings the caller has
// purchased and now owns.
func (h *MarketHandler) FetchMyItems(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    items, err := h.Market.FetchOwned(c.Request().Context(), uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": toItemResps(items)})
}

// FetchCreated handles GET /v1/market/created: listings where the caller
// is the recorded seller, sold or not.
func (h *MarketHandler) FetchCreated(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    items, err := h.Market.FetchCreated(c.Request().Context(), uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": toItemResps(items)})
}

func toItemResps(items []*model.MarketItem) []itemResp {
    out := make([]itemResp, 0, len(items))
    for _, it := range items {
        out = append(out, toItemResp(it))
    }
    return out
}
