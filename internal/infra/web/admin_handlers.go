package web

import (
	"net/http"
	"strconv"
	"time"

	"digital-storefront/internal/domain"
	"digital-storefront/internal/domain/model"
	"digital-storefront/internal/usecase"

	"github.com/shopspring/decimal"
)

// ---- Products ----

type adminProductView struct {
	productView
	FileURL        *string   `json:"fileUrl,omitempty"`
	TelegramLink   *string   `json:"telegramLink,omitempty"`
	TelegramChatID *int64    `json:"telegramChatId,omitempty"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func toAdminProductView(p *model.Product) adminProductView {
	return adminProductView{
		productView:    toProductView(p),
		FileURL:        p.FileURL,
		TelegramLink:   p.TelegramLink,
		TelegramChatID: p.TelegramChatID,
		IsActive:       p.IsActive,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// productRequest is shared by create and update; absent fields stay unchanged on update.
type productRequest struct {
	Name           *string          `json:"name"`
	Description    *string          `json:"description"`
	Price          *decimal.Decimal `json:"price"`
	Type           *string          `json:"type"`
	FileURL        *string          `json:"fileUrl"`
	TelegramLink   *string          `json:"telegramLink"`
	TelegramChatID *int64           `json:"telegramChatId"`
	ImageURL       *string          `json:"imageUrl"`
	IsActive       *bool            `json:"isActive"`
}

func (p productRequest) input() usecase.ProductInput {
	in := usecase.ProductInput{
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		TelegramChatID: p.TelegramChatID,
		ImageURL:       p.ImageURL,
		IsActive:       p.IsActive,
	}
	if p.Type != nil {
		t := model.ProductType(*p.Type)
		in.Type = &t
	}
	if p.FileURL != nil {
		in.Payload = p.FileURL
	} else if p.TelegramLink != nil {
		in.Payload = p.TelegramLink
	}
	return in
}

func (s *Server) handleAdminListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.deps.Products.List(r.Context(), false)
	if err != nil {
		s.logFailure(r, err, "admin list products failed")
		writeError(w, err)
		return
	}
	items := make([]adminProductView, 0, len(products))
	for _, p := range products {
		items = append(items, toAdminProductView(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleAdminCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := s.deps.Products.Create(r.Context(), req.input())
	if err != nil {
		s.logFailure(r, err, "admin create product failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAdminProductView(p))
}

func (s *Server) handleAdminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, domain.ErrProductNotFound)
	if !ok {
		return
	}
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := s.deps.Products.Update(r.Context(), id, req.input())
	if err != nil {
		s.logFailure(r, err, "admin update product failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAdminProductView(p))
}

// ---- Promo codes ----

type promoView struct {
	ID              string     `json:"id"`
	Code            string     `json:"code"`
	DiscountPercent int        `json:"discountPercent"`
	MaxUses         *int       `json:"maxUses"`
	UsedCount       int        `json:"usedCount"`
	IsActive        bool       `json:"isActive"`
	ExpiresAt       *time.Time `json:"expiresAt"`
	CreatedAt       time.Time  `json:"createdAt"`
}

func toPromoView(p *model.PromoCode) promoView {
	return promoView{
		ID:              p.ID,
		Code:            p.Code,
		DiscountPercent: p.DiscountPercent,
		MaxUses:         p.MaxUses,
		UsedCount:       p.UsedCount,
		IsActive:        p.IsActive,
		ExpiresAt:       p.ExpiresAt,
		CreatedAt:       p.CreatedAt,
	}
}

type promoCreateRequest struct {
	Code            string     `json:"code"`
	DiscountPercent int        `json:"discountPercent"`
	MaxUses         *int       `json:"maxUses"`
	ExpiresAt       *time.Time `json:"expiresAt"`
}

func (s *Server) handleAdminListPromos(w http.ResponseWriter, r *http.Request) {
	promos, err := s.deps.Promos.List(r.Context())
	if err != nil {
		s.logFailure(r, err, "admin list promos failed")
		writeError(w, err)
		return
	}
	items := make([]promoView, 0, len(promos))
	for _, p := range promos {
		items = append(items, toPromoView(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleAdminCreatePromo(w http.ResponseWriter, r *http.Request) {
	var req promoCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := s.deps.Promos.Create(r.Context(), req.Code, req.DiscountPercent, req.MaxUses, req.ExpiresAt)
	if err != nil {
		s.logFailure(r, err, "admin create promo failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPromoView(p))
}

func (s *Server) handleAdminTogglePromo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, domain.ErrNotFound)
	if !ok {
		return
	}
	var req struct {
		IsActive *bool `json:"isActive"`
	}
	if err := decodeJSON(r, &req); err != nil || req.IsActive == nil {
		writeError(w, domain.ErrInvalidArgument)
		return
	}
	if err := s.deps.Promos.SetActive(r.Context(), id, *req.IsActive); err != nil {
		s.logFailure(r, err, "admin toggle promo failed")
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdminDeletePromo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, domain.ErrNotFound)
	if !ok {
		return
	}
	if err := s.deps.Promos.Delete(r.Context(), id); err != nil {
		s.logFailure(r, err, "admin delete promo failed")
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- Transactions ----

type transactionView struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	ProductID        string    `json:"productId"`
	Amount           float64   `json:"amount"`
	DiscountAmount   float64   `json:"discountAmount"`
	Currency         string    `json:"currency"`
	PromoCodeID      *string   `json:"promoCodeId,omitempty"`
	Status           string    `json:"status"`
	GatewayOrderID   string    `json:"gatewayOrderId"`
	GatewayPaymentID *string   `json:"gatewayPaymentId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// handleAdminListTransactions accepts ?status=pending|success|failed and ?limit=N.
func (s *Server) handleAdminListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := model.TransactionStatus(q.Get("status"))
	if status != "" && !status.Valid() {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "unknown status"})
		return
	}
	limit, _ := strconv.Atoi(q.Get("limit"))

	txns, err := s.deps.Payments.ListTransactions(r.Context(), status, limit)
	if err != nil {
		s.logFailure(r, err, "admin list transactions failed")
		writeError(w, err)
		return
	}
	items := make([]transactionView, 0, len(txns))
	for _, t := range txns {
		items = append(items, transactionView{
			ID:               t.ID,
			UserID:           t.UserID,
			ProductID:        t.ProductID,
			Amount:           t.Amount.InexactFloat64(),
			DiscountAmount:   t.DiscountAmount.InexactFloat64(),
			Currency:         t.Currency,
			PromoCodeID:      t.PromoCodeID,
			Status:           string(t.Status),
			GatewayOrderID:   t.GatewayOrderID,
			GatewayPaymentID: t.GatewayPaymentID,
			CreatedAt:        t.CreatedAt,
			UpdatedAt:        t.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// ---- Payment settings ----

type paymentSettingView struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *Server) handleAdminListPaymentSettings(w http.ResponseWriter, r *http.Request) {
	entries, err := s.deps.Gateway.List(r.Context())
	if err != nil {
		s.logFailure(r, err, "admin list payment settings failed")
		writeError(w, err)
		return
	}
	items := make([]paymentSettingView, 0, len(entries))
	for _, e := range entries {
		items = append(items, paymentSettingView{Key: e.Key, Value: e.Value, UpdatedAt: e.UpdatedAt})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleAdminStorePaymentSetting(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.deps.Gateway.Store(r.Context(), req.Key, req.Value); err != nil {
		s.logFailure(r, err, "admin store payment setting failed")
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- Dashboard ----

type revenueView struct {
	Sales  int     `json:"sales"`
	Amount float64 `json:"amount"`
}

type statsView struct {
	Users           int         `json:"users"`
	NewUsersInMonth int         `json:"newUsersThisMonth"`
	Products        int         `json:"products"`
	Revenue         revenueView `json:"revenue"`
	MonthRevenue    revenueView `json:"monthRevenue"`
	Currency        string      `json:"currency"`
	MonthStart      time.Time   `json:"monthStart"`
}

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Stats.Dashboard(r.Context())
	if err != nil {
		s.logFailure(r, err, "admin stats failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statsView{
		Users:           st.Users,
		NewUsersInMonth: st.NewUsersInMonth,
		Products:        st.Products,
		Revenue:         revenueView{Sales: st.Revenue.Sales, Amount: st.Revenue.Amount.InexactFloat64()},
		MonthRevenue:    revenueView{Sales: st.MonthRevenue.Sales, Amount: st.MonthRevenue.Amount.InexactFloat64()},
		Currency:        st.Currency,
		MonthStart:      st.MonthStart,
	})
}

// ---- Customers ----

type userView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  *string   `json:"fullName"`
	IsAdmin   bool      `json:"isAdmin"`
	IsBanned  bool      `json:"isBanned"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserView(p *model.Profile) userView {
	return userView{
		ID:        p.ID,
		Email:     p.Email,
		FullName:  p.FullName,
		IsAdmin:   p.IsAdmin,
		IsBanned:  p.IsBanned,
		CreatedAt: p.CreatedAt,
	}
}

// handleAdminListUsers accepts ?limit=N.
func (s *Server) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	users, err := s.deps.Users.List(r.Context(), limit)
	if err != nil {
		s.logFailure(r, err, "admin list users failed")
		writeError(w, err)
		return
	}
	items := make([]userView, 0, len(users))
	for _, u := range users {
		items = append(items, toUserView(u))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleAdminUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, domain.ErrNotFound)
	if !ok {
		return
	}
	var req struct {
		IsBanned *bool `json:"isBanned"`
		IsAdmin  *bool `json:"isAdmin"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	u, err := s.deps.Users.Update(r.Context(), id, req.IsBanned, req.IsAdmin)
	if err != nil {
		s.logFailure(r, err, "admin update user failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserView(u))
}
