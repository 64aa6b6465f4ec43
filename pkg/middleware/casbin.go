package middleware

import (
	"log"
	"net/http"

	"AcademyNotify/internal/auth"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	"github.com/casbin/casbin/v2/util"
	"github.com/labstack/echo/v4"
)

// rbacModel is the RBAC model, kept in code so only the policy ships as a file.
const rbacModel = `[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act, eft

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch(r.obj, p.obj) && r.act == p.act`

// NewEnforcer builds the Casbin enforcer from the embedded model and the
// rbac_policy.csv file next to the binary.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}
	adapter := fileadapter.NewAdapter("rbac_policy.csv")
	enforcer, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.AddFunction("keyMatch", util.KeyMatchFunc)

	policies, _ := enforcer.GetPolicy()
	log.Printf("Casbin enforcer created. Policy count: %d", len(policies))
	return enforcer, nil
}

// Casbin enforces RBAC over the request path for each authenticated request.
func Casbin(enforcer *casbin.Enforcer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get("user").(*auth.JWTClaims)
			if !ok || claims == nil {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Unauthorized: missing user claims"})
			}

			allowed, err := enforcer.Enforce(claims.Role, c.Request().URL.Path, c.Request().Method)
			if err != nil {
				log.Println("Casbin enforce error:", err)
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "RBAC system error"})
			}
			if !allowed {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Forbidden: insufficient permissions"})
			}
			return next(c)
		}
	}
}
