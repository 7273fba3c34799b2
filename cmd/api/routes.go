package main

import (
	"classroom-api/internal/accounts"
	"classroom-api/internal/auth"
	"classroom-api/internal/guard"
	"classroom-api/internal/httpapi"
	"classroom-api/internal/metrics"
	"classroom-api/internal/rbac"

	"github.com/gin-gonic/gin"
)

type routeDeps struct {
	Handlers httpapi.Handlers
	Auth     *auth.Manager
	Accounts *accounts.Service
	Metrics  *metrics.Metrics
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Every access rule is an explicit guard list here.
func registerRoutes(r *gin.Engine, d routeDeps) {
	h := d.Handlers

	protect := func(guards ...guard.Guard) gin.HandlerFunc {
		ch := guard.New(guards...)
		if d.Metrics != nil {
			ch.OnDeny(d.Metrics.ObserveDenial)
		}
		return ch.Handler()
	}

	authn := auth.Authenticate(d.Auth)
	admin := rbac.RequireAdmin(d.Accounts)
	selfPath := rbac.RequireSelf(rbac.PathParam("email"))

	// public
	r.GET("/", h.Root)
	r.GET("/healthz", h.Health)
	r.GET("/readyz", h.Ready)
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}
	r.POST("/jwt", h.IssueToken)
	r.GET("/stats", h.Stats)
	r.GET("/course", h.ListCourses)
	r.GET("/classes", h.ListClasses)

	// users
	r.GET("/users", protect(authn, admin), h.ListUsers)
	r.GET("/users/admin/:email", protect(authn, selfPath), h.IsAdmin)
	r.POST("/users", h.RegisterUser)
	r.PATCH("/users/admin/:id", protect(authn, admin), h.PromoteUser)

	// teachers
	r.GET("/teachers", protect(authn, admin), h.ListTeachers)
	r.GET("/teachers/admin/:email", protect(authn, selfPath), h.IsTeacher)
	r.POST("/teachers", h.RegisterTeacher)
	r.PATCH("/teachers/admin/:id", protect(authn, admin), h.PromoteTeacher)

	// catalog
	// Course, class and enrollment writes and the enrollment lookup carry no
	// identity or ownership check. Known gap; class deletion only authenticates.
	r.POST("/course", h.CreateCourse)
	r.POST("/classes", h.CreateClass)
	r.DELETE("/classes/:id", protect(authn), h.DeleteClass)
	r.GET("/enroll", h.Enrollments)
	r.POST("/enroll", h.Enroll)

	// payments
	r.POST("/create-payment-intent", protect(authn), h.CreatePaymentIntent)
	r.POST("/payments", protect(authn), h.RecordPayment)
	r.GET("/payments/:email", protect(authn, selfPath), h.PaymentHistory)
}
