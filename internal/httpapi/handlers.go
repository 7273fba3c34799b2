package httpapi

import (
	"context"
	"net/http"
	"time"

	"classroom-api/internal/accounts"
	"classroom-api/internal/auth"
	"classroom-api/internal/catalog"
	"classroom-api/internal/docstore"
	"classroom-api/internal/payments"
	"classroom-api/internal/rbac"
	"classroom-api/internal/reporting"
	"classroom-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse input, call internal services, return JSON.
// Access rules live in the guard chains set up at route registration.
type Handlers struct {
	Auth      *auth.Manager
	Accounts  *accounts.Service
	Catalog   *catalog.Service
	Payments  *payments.Service
	Reporting *reporting.Service
	Store     docstore.Store
}

// --- Auth ---

// IssueToken signs whatever JSON object the client sends.
// No credential is checked here: the client has already signed in with its identity provider.
func (h Handlers) IssueToken(c *gin.Context) {
	body, ok := bindObject(c)
	if !ok {
		return
	}
	tok, err := h.Auth.Issue(time.Now(), body)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": tok})
}

// --- Users and teachers ---

func (h Handlers) ListUsers(c *gin.Context)    { h.list(c, rbac.Users) }
func (h Handlers) ListTeachers(c *gin.Context) { h.list(c, rbac.Teachers) }

func (h Handlers) list(c *gin.Context, dir rbac.Directory) {
	docs, err := h.Accounts.List(c.Request.Context(), dir)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (h Handlers) RegisterUser(c *gin.Context)    { h.register(c, rbac.Users, "user already exists") }
func (h Handlers) RegisterTeacher(c *gin.Context) { h.register(c, rbac.Teachers, "teacher already exists") }

func (h Handlers) register(c *gin.Context, dir rbac.Directory, existsMessage string) {
	doc, ok := bindObject(c)
	if !ok {
		return
	}
	res, err := h.Accounts.Register(c.Request.Context(), dir, doc)
	if err != nil {
		writeError(c, err)
		return
	}
	if !res.Created {
		c.JSON(http.StatusOK, gin.H{"message": existsMessage, "insertedId": nil})
		return
	}
	c.JSON(http.StatusOK, docstore.InsertResult{Acknowledged: true, InsertedID: res.InsertedID})
}

// IsAdmin answers for the path email, which the self guard has already matched to the caller.
func (h Handlers) IsAdmin(c *gin.Context) { h.hasRole(c, rbac.Users, rbac.RoleAdmin, "admin") }

func (h Handlers) IsTeacher(c *gin.Context) {
	h.hasRole(c, rbac.Teachers, rbac.RoleTeacher, "teacher")
}

func (h Handlers) hasRole(c *gin.Context, dir rbac.Directory, role rbac.Role, key string) {
	ok, err := h.Accounts.HasRole(c.Request.Context(), dir, c.Param("email"), role)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{key: ok})
}

func (h Handlers) PromoteUser(c *gin.Context)    { h.promote(c, rbac.Users) }
func (h Handlers) PromoteTeacher(c *gin.Context) { h.promote(c, rbac.Teachers) }

func (h Handlers) promote(c *gin.Context, dir rbac.Directory) {
	email, _ := auth.Email(c.Request.Context())
	res, err := h.Accounts.Promote(c.Request.Context(), dir, c.Param("id"), accounts.Actor{Email: email, IP: c.ClientIP()})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// --- Catalog ---

func (h Handlers) ListCourses(c *gin.Context) {
	docs, err := h.Catalog.ListCourses(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (h Handlers) CreateCourse(c *gin.Context) {
	doc, ok := bindObject(c)
	if !ok {
		return
	}
	res, err := h.Catalog.CreateCourse(c.Request.Context(), doc)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h Handlers) ListClasses(c *gin.Context) {
	docs, err := h.Catalog.ListClasses(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (h Handlers) CreateClass(c *gin.Context) {
	doc, ok := bindObject(c)
	if !ok {
		return
	}
	res, err := h.Catalog.CreateClass(c.Request.Context(), doc)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// DeleteClass does not check ownership; any authenticated caller may delete.
func (h Handlers) DeleteClass(c *gin.Context) {
	email, _ := auth.Email(c.Request.Context())
	res, err := h.Catalog.DeleteClass(c.Request.Context(), c.Param("id"), catalog.Actor{Email: email, IP: c.ClientIP()})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h Handlers) Enrollments(c *gin.Context) {
	docs, err := h.Catalog.Enrollments(c.Request.Context(), c.Query("email"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (h Handlers) Enroll(c *gin.Context) {
	doc, ok := bindObject(c)
	if !ok {
		return
	}
	res, err := h.Catalog.Enroll(c.Request.Context(), doc)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// --- Payments ---

type paymentIntentRequest struct {
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
}

func (h Handlers) CreatePaymentIntent(c *gin.Context) {
	var req paymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	intent, err := h.Payments.CreateIntent(c.Request.Context(), req.Price, req.Currency)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clientSecret": intent.ClientSecret})
}

// RecordPayment stores a payment for the caller only.
func (h Handlers) RecordPayment(c *gin.Context) {
	doc, ok := bindObject(c)
	if !ok {
		return
	}
	email, _ := auth.Email(c.Request.Context())
	if owner, _ := doc["email"].(string); owner == "" || owner != email {
		writeError(c, rbac.ErrForbidden)
		return
	}
	res, err := h.Payments.Record(c.Request.Context(), doc)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h Handlers) PaymentHistory(c *gin.Context) {
	docs, err := h.Payments.History(c.Request.Context(), c.Param("email"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

// --- Public ---

func (h Handlers) Stats(c *gin.Context) {
	s, err := h.Reporting.Stats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h Handlers) Root(c *gin.Context) {
	c.String(http.StatusOK, "Student learning classroom")
}

func (h Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports whether the document store answers within two seconds.
func (h Handlers) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		logger.FromGin(c).Warn("readiness check failed", "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// bindObject decodes a JSON object body. Arrays, scalars and null are rejected with 400.
func bindObject(c *gin.Context) (docstore.Document, bool) {
	var doc docstore.Document
	if err := c.ShouldBindJSON(&doc); err != nil || doc == nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return nil, false
	}
	return doc, true
}
