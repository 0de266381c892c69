package mid

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"google.golang.org/api/idtoken"

	"github.com/doitintl/hello/mixpanel-sheets/common"
	"github.com/doitintl/hello/mixpanel-sheets/framework/web"
	"github.com/doitintl/hello/mixpanel-sheets/logger"
)

const (
	// https://cloud.google.com/tasks/docs/creating-appengine-tasks#firewall_rules
	appEngineUserIPHeader = "X-Appengine-User-IP"
	appEngineCloudTasksIP = "0.1.0.2"

	// set by App Engine on cron requests and stripped from external traffic
	appEngineCronHeader = "X-Appengine-Cron"

	oidcAudienceEnv = "OIDC_AUDIENCE"
)

var (
	ErrForbidden = errors.New("forbidden operation")
)

// TokenValidator validates an OIDC token against an audience.
type TokenValidator func(ctx *gin.Context, token, audience string) (*idtoken.Payload, error)

func validateIDToken(ctx *gin.Context, token, audience string) (*idtoken.Payload, error) {
	return idtoken.Validate(ctx, token, audience)
}

func GetAllowedCloudJobsEmails() []string {
	emails := []string{
		fmt.Sprintf("gcp-jobs@%s.iam.gserviceaccount.com", common.ProjectID),
		fmt.Sprintf("%s@appspot.gserviceaccount.com", common.ProjectID),
	}

	if extra := common.GetEnv("TASKS_ALLOWED_EMAILS", ""); extra != "" {
		for _, email := range strings.Split(extra, ",") {
			if email = strings.TrimSpace(email); email != "" {
				emails = append(emails, email)
			}
		}
	}

	return emails
}

func audiences() []string {
	return []string{
		common.GetEnv(oidcAudienceEnv, common.GAEService),
	}
}

// AuthServiceAccount validates requests from service accounts in production
func AuthServiceAccount(validClaimEmails []string) web.Middleware {
	return authServiceAccount(validClaimEmails, validateIDToken, common.IsLocalhost)
}

func authServiceAccount(validClaimEmails []string, validate TokenValidator, skip bool) web.Middleware {
	f := func(handler web.Handler) web.Handler {
		h := func(ctx *gin.Context) error {
			l := logger.FromContext(ctx)

			// Skip validation when running in localhost
			if skip {
				return handler(ctx)
			}

			// Skip OIDC auth validation when running app engine jobs
			if ctx.Request.Header.Get(appEngineUserIPHeader) == appEngineCloudTasksIP ||
				ctx.Request.Header.Get(appEngineCronHeader) == "true" {
				return handler(ctx)
			}

			payload, err := validateIDTokenPayload(ctx, validate)
			if err != nil {
				return err
			}

			// Verify email claim matches the required service account
			claimsEmail, _ := payload.Claims["email"].(string)
			if !slices.Contains(validClaimEmails, claimsEmail) {
				l.Println("invalid token: does not match any valid claims email", payload.Claims["email"], validClaimEmails)
				return web.NewRequestError(ErrForbidden, http.StatusForbidden)
			}

			return handler(ctx)
		}

		return h
	}

	return f
}

// validateIDTokenPayload validates the authorization header bearer token
// using Google's idtoken package
func validateIDTokenPayload(ctx *gin.Context, validate TokenValidator) (*idtoken.Payload, error) {
	authHeader := ctx.Request.Header.Get("Authorization")
	if authHeader == "" {
		err := errors.New("no authorization header")
		return nil, web.NewRequestError(err, http.StatusUnauthorized)
	}

	parts := strings.Split(authHeader, " ")

	if len(parts) != 2 || parts[0] != "Bearer" {
		err := errors.New("invalid authorization header format, expected Bearer <token>")
		return nil, web.NewRequestError(err, http.StatusUnauthorized)
	}

	for _, audience := range audiences() {
		if payload, err := validate(ctx, parts[1], audience); err == nil {
			return payload, nil
		}
	}

	logger.FromContext(ctx).Println("invalid token: does not match any valid audience")

	return nil, web.NewRequestError(errors.New("invalid token: does not match any valid audience"), http.StatusUnauthorized)
}
