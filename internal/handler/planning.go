package handler

import (
	"net/http"

	"github.com/tillgreens/microfarm/internal/domain"
	"github.com/tillgreens/microfarm/internal/logger"
	"github.com/tillgreens/microfarm/internal/planner"
)

type PlanOrdersRequest struct {
	Orders []*domain.Order `json:"orders" validate:"required,min=1,dive,required"`
}

// HandlePlanOrders computes requirement records for a set of orders.
// Partial success is a 200: unresolvable items come back in the
// report's issues with feasible set to false.
func HandlePlanOrders(svc planner.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req PlanOrdersRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Plan orders"); err != nil {
			return
		}

		report, err := svc.PlanOrders(r.Context(), req.Orders)
		if err != nil {
			log.Error("Failed to plan orders", "error", err, "orders", len(req.Orders))
			statusCode, userMsg := mapServiceErrorToUserMessage(err)
			respondError(w, statusCode, userMsg)
			return
		}

		log.Info("Orders planned",
			"orders", len(req.Orders),
			"requirements", len(report.Requirements),
			"issues", len(report.Issues),
			"feasible", report.Feasible)

		respondJSON(w, http.StatusOK, report)
	}
}
