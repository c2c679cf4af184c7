package api

import (
	"errors"
	"strconv"

	"giftcode-market/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Returned when an authenticated route runs without RequireAuth having
// populated the context.
var errMissingAuthContext = errors.New("auth context missing")

const defaultListLimit = 50

func parseIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Param(name))
}

// parseListArgs reads the cursor/limit query pair shared by every
// paginated listing.
func parseListArgs(c *gin.Context) (*queries.Cursor, int) {
	var after *queries.Cursor
	if raw := c.Query("cursor"); raw != "" {
		after = &queries.Cursor{After: raw}
	}

	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	return after, limit
}
