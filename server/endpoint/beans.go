package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/beankit/di"
)

// BeanLister describes registered beans. *di.Container implements it.
type BeanLister interface {
	Definitions() []di.DefinitionInfo
}

// Beans returns a handler listing every registered bean, its scope and
// whether a singleton instance exists yet.
func Beans(beans BeanLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		defs := beans.Definitions()
		scopes := make(map[di.ScopeKind]int)
		for _, d := range defs {
			scopes[d.Scope]++
		}
		c.JSON(http.StatusOK, gin.H{
			"count":  len(defs),
			"scopes": scopes,
			"beans":  defs,
		})
	}
}
