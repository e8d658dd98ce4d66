package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard/internal/constants"
	apierrors "github.com/yukikurage/taskboard/internal/errors"
	"github.com/yukikurage/taskboard/internal/models"
)

// TaskLookup resolves the task named in the URL.
type TaskLookup interface {
	GetTask(id string) (models.Task, error)
}

// RequireTask loads the task in the :id parameter into the context.
func RequireTask(tasks TaskLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		task, err := tasks.GetTask(c.Param("id"))
		if err != nil {
			apierrors.Respond(c, err)
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTask, task)
		c.Next()
	}
}

// GetTask retrieves the task loaded by RequireTask
func GetTask(c *gin.Context) (models.Task, bool) {
	v, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return models.Task{}, false
	}
	task, ok := v.(models.Task)
	return task, ok
}
