package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-tracker/internal/core/domain"
	"github.com/comitanigiacomo/kanso-tracker/internal/core/services"
)

var badRequestErrors = []error{
	domain.ErrHabitNameEmpty,
	domain.ErrHabitNameTooLong,
	domain.ErrHabitDescTooLong,
	domain.ErrHabitNotesTooLong,
	domain.ErrInvalidColor,
	domain.ErrInvalidGoal,
	domain.ErrInvalidCategory,
	domain.ErrInvalidPriority,
	domain.ErrInvalidDate,
	domain.ErrInvalidStatus,
	domain.ErrInvalidSnapshot,
	domain.ErrInvalidFollowers,
	domain.ErrInvalidEntries,
	domain.ErrNoteTitleEmpty,
	domain.ErrNoteTitleTooLong,
}

var notFoundErrors = []error{
	domain.ErrHabitNotFound,
	domain.ErrEntryNotFound,
	domain.ErrNoteNotFound,
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// respondError maps domain errors onto status codes. Anything unknown is
// recorded on the gin context and hidden behind a generic 500.
func respondError(c *gin.Context, err error) {
	switch {
	case matchesAny(err, badRequestErrors):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case matchesAny(err, notFoundErrors):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrFixedHabits), errors.Is(err, domain.ErrDuplicateEntryDate),
		errors.Is(err, domain.ErrDuplicateEntryID):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrTrackerNotLoaded), errors.Is(err, domain.ErrSyncUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
