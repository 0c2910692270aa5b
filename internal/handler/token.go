package handler // handler package contains token registry handlers

import (
    "errors"
    "net/http"
    "strconv"
    "strings"

    "github.com/forgefinance/nft-marketplace/internal/repository"
    "github.com/labstack/echo/v4"
)

// TokenHandler exposes the token registry: minting into a collection and
// the standard ownership queries (owner-of, token-URI, balance-of).
type TokenHandler struct {
    Tokens      *repository.TokenRepo
    Collections *repository.CollectionRepo
}

// NewTokenHandler constructs a TokenHandler and panics on nil deps.
func NewTokenHandler(tokens *repository.TokenRepo, collections *repository.CollectionRepo) *TokenHandler {
    if tokens == nil || collections == nil {
        panic("nil repository passed to NewTokenHandler")
    }
    return &TokenHandler{Tokens: tokens, Collections: collections}
}

type mintedResp struct {
    CollectionID uint64   `json:"collection_id"`
    TokenNos     []uint64 `json:"token_nos"`
    URI          string   `json:"uri"`
}

// MintToken handles POST /v1/collections/:id/tokens. It mints one token
// to the caller with the given metadata reference and returns the new
// token number. The reference is opaque; no validation beyond presence.
func (h *TokenHandler) MintToken(c echo.Context) error {
    ownerID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    collectionID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid collection id"})
    }
    var body struct {
        URI string `json:"uri"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    uri := strings.TrimSpace(body.URI)
    if uri == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "uri is required"})
    }
    no, err := h.Tokens.Mint(c.Request().Context(), collectionID, ownerID, uri)
    if err != nil {
        if errors.Is(err, repository.ErrCollectionNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "collection not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "mint failed"})
    }
    return c.JSON(http.StatusCreated, mintedResp{CollectionID: collectionID, TokenNos: []uint64{no}, URI: uri})
}

// MintBatch handles POST /v1/collections/:id/tokens/batch. It mints
// count tokens to the caller in a single all-or-nothing operation, each
// carrying the same metadata reference. count must be a positive
// integer.
func (h *TokenHandler) MintBatch(c echo.Context) error {
    ownerID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    collectionID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid collection id"})
    }
    var body struct {
        Count int    `json:"count"`
        URI   string `json:"uri"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.Count <= 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "count must be a positive integer"})
    }
    uri := strings.TrimSpace(body.URI)
    if uri == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "uri is required"})
    }
    nos, err := h.Tokens.MintBatch(c.Request().Context(), collectionID, ownerID, uri, body.Count)
    if err != nil {
        if errors.Is(err, repository.ErrCollectionNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "collection not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "mint failed"})
    }
    return c.JSON(http.StatusCreated, mintedResp{CollectionID: collectionID, TokenNos: nos, URI: uri})
}

// GetToken handles GET /v1/collections/:id/tokens/:no. It returns the
// owner-of and token-URI views for a single token. Unknown token
// numbers yield 404.
func (h *TokenHandler) GetToken(c echo.Context) error {
    collectionID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid collection id"})
    }
    tokenNo, err := pathID(c, "no")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid token number"})
    }
    t, err := h.Tokens.Get(c.Request().Context(), collectionID, tokenNo)
    if err != nil {
        if errors.Is(err, repository.ErrTokenNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "token not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "collection_id": t.CollectionID,
        "token_no":      t.TokenNo,
        "owner_id":      t.OwnerID,
        "uri":           t.URI,
        "created_at":    t.CreatedAt,
    })
}

// GetBalance handles GET /v1/collections/:id/balance/:account. It
// returns the number of tokens the account owns in the collection.
func (h *TokenHandler) GetBalance(c echo.Context) error {
    collectionID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid collection id"})
    }
    accountID, err := strconv.ParseUint(c.Param("account"), 10, 64)
    if err != nil || accountID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid account id"})
    }
    if _, err := h.Collections.GetByID(c.Request().Context(), collectionID); err != nil {
        if errors.Is(err, repository.ErrCollectionNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "collection not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
    }
    n, err := h.Tokens.BalanceOf(c.Request().Context(), collectionID, accountID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "collection_id": collectionID,
        "account_id":    accountID,
        "balance":       n,
    })
}
