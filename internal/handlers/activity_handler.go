package handlers

import (
	"errors"
	"log"
	"time"

	"greentrack/internal/emissions"
	"greentrack/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ActivityHandler handles HTTP requests for the activity ledger, the
// activity-type catalogue, and the public leaderboard.
type ActivityHandler struct {
	activityService    *services.ActivityService
	leaderboardService *services.LeaderboardService
	table              *emissions.Table
	validate           *validator.Validate
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(activityService *services.ActivityService, leaderboardService *services.LeaderboardService, table *emissions.Table) *ActivityHandler {
	return &ActivityHandler{
		activityService:    activityService,
		leaderboardService: leaderboardService,
		table:              table,
		validate:           validator.New(),
	}
}

// RegisterRoutes registers the activity routes. The leaderboard and the
// type catalogue are public; everything else goes through the token gate.
func (h *ActivityHandler) RegisterRoutes(router fiber.Router, protect fiber.Handler) {
	activityRoutes := router.Group("/activities")
	activityRoutes.Get("/leaderboard", h.HandleLeaderboard)
	activityRoutes.Get("/types", h.HandleTypes)
	activityRoutes.Post("/", protect, h.HandleCreate)
	activityRoutes.Get("/", protect, h.HandleList)
	activityRoutes.Get("/summary", protect, h.HandleSummary)
	activityRoutes.Delete("/:id", protect, h.HandleDelete)
}

// CreateActivityRequest is the request body for logging an activity.
type CreateActivityRequest struct {
	Date     string  `json:"date" validate:"required"`
	Category string  `json:"category" validate:"required"`
	Type     string  `json:"type" validate:"required"`
	Value    float64 `json:"value" validate:"required,gt=0"`
	Unit     string  `json:"unit" validate:"required"`
}

// parseDate accepts the bare calendar date the client posts, or a full
// RFC3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if d, err := time.Parse("2006-01-02", s); err == nil {
		return d, nil
	}
	return time.Parse(time.RFC3339, s)
}

// HandleCreate logs a new activity for the authenticated user. The owner is
// always the token's identity; a userId in the payload is ignored.
func (h *ActivityHandler) HandleCreate(c *fiber.Ctx) error {
	ownerID, _ := c.Locals("user_id").(string)

	var req CreateActivityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "date, category, type, unit and a positive value are required",
		})
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "date must be YYYY-MM-DD or RFC3339",
		})
	}

	activity, err := h.activityService.Log(ownerID, date, req.Category, req.Type, req.Value, req.Unit)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCategory) ||
			errors.Is(err, emissions.ErrUnknownActivityType) ||
			errors.Is(err, emissions.ErrInvalidValue) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		}
		log.Printf("Error creating activity for user %s: %v", ownerID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Could not create activity",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    activity,
	})
}

// HandleList returns the authenticated user's activities, newest date first.
func (h *ActivityHandler) HandleList(c *fiber.Ctx) error {
	ownerID, _ := c.Locals("user_id").(string)

	activities, err := h.activityService.List(ownerID)
	if err != nil {
		log.Printf("Error listing activities for user %s: %v", ownerID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Could not retrieve activities",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(activities),
		"data":    activities,
	})
}

// HandleDelete removes one of the authenticated user's activities. A
// foreign-owned id yields the same 404 as a nonexistent one.
func (h *ActivityHandler) HandleDelete(c *fiber.Ctx) error {
	ownerID, _ := c.Locals("user_id").(string)
	activityID := c.Params("id")

	if err := h.activityService.Delete(ownerID, activityID); err != nil {
		if errors.Is(err, services.ErrActivityNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "Activity not found or unauthorized",
			})
		}
		log.Printf("Error deleting activity %s for user %s: %v", activityID, ownerID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Could not delete activity",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{},
	})
}

// HandleSummary returns the authenticated user's footprint totals per
// category, for the dashboard breakdown.
func (h *ActivityHandler) HandleSummary(c *fiber.Ctx) error {
	ownerID, _ := c.Locals("user_id").(string)

	totals, err := h.activityService.Summary(ownerID)
	if err != nil {
		log.Printf("Error summarising activities for user %s: %v", ownerID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Could not compute summary",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    totals,
	})
}

// HandleLeaderboard returns the public ranking, lowest lifetime footprint
// first.
func (h *ActivityHandler) HandleLeaderboard(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", services.DefaultLeaderboardLimit)

	entries, err := h.leaderboardService.Ranking(limit)
	if err != nil {
		log.Printf("Error computing leaderboard: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Could not compute leaderboard",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    entries,
	})
}

// HandleTypes returns the activity-type catalogue so clients can build
// input forms without hardcoding the emissions table.
func (h *ActivityHandler) HandleTypes(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.table.Catalog(),
	})
}
