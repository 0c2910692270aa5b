package handler // handler package contains collection factory handlers

import (
    "net/http"
    "strings"
    "time"

    "github.com/forgefinance/nft-marketplace/internal/model"
    "github.com/forgefinance/nft-marketplace/internal/repository"
    "github.com/labstack/echo/v4"
)

// CollectionHandler exposes the collection factory: authenticated
// accounts create named collections on demand and list the collections
// they have created.
type CollectionHandler struct {
    Collections *repository.CollectionRepo
}

// NewCollectionHandler constructs a CollectionHandler and panics if the
// repository is nil.
func NewCollectionHandler(collections *repository.CollectionRepo) *CollectionHandler {
    if collections == nil {
        panic("nil repository passed to NewCollectionHandler")
    }
    return &CollectionHandler{Collections: collections}
}

type collectionResp struct {
    ID          uint64    `json:"id"`
    Name        string    `json:"name"`
    Symbol      string    `json:"symbol"`
    NextTokenNo uint64    `json:"next_token_no"`
    CreatedAt   time.Time `json:"created_at"`
}

func toCollectionResp(c *model.Collection) collectionResp {
    return collectionResp{ID: c.ID, Name: c.Name, Symbol: c.Symbol, NextTokenNo: c.NextTokenNo, CreatedAt: c.CreatedAt}
}

// CreateCollection handles POST /v1/collections and creates a new
// collection for the authenticated account. Repeated (name, symbol)
// pairs are allowed and produce distinct collections, so there is no
// duplicate check here.
func (h *CollectionHandler) CreateCollection(c echo.Context) error {
    creatorID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var body struct {
        Name   string `json:"name"`
        Symbol string `json:"symbol"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    name := strings.TrimSpace(body.Name)
    symbol := strings.TrimSpace(body.Symbol)
    if name == "" || symbol == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and symbol are required"})
    }
    col := &model.Collection{CreatorID: creatorID, Name: name, Symbol: symbol}
    if err := h.Collections.Create(c.Request().Context(), col); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create collection"})
    }
    return c.JSON(http.StatusCreated, toCollectionResp(col))
}

// ListMyCollections handles GET /v1/collections and returns the
// collections created by the authenticated account, oldest first.
func (h *CollectionHandler) ListMyCollections(c echo.Context) error {
    creatorID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    cols, err := h.Collections.ListByCreator(c.Request().Context(), creatorID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
    }
    items := make([]collectionResp, 0, len(cols))
    for _, col := range cols {
        items = append(items, toCollectionResp(col))
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}
