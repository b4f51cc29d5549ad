package auth

import (
	"net/url"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// RouteKey names a logical action by area, controller and action.
type RouteKey struct {
	Area       string
	Controller string
	Action     string
}

var (
	// ConfirmEmailRoute targets the email confirmation endpoint.
	ConfirmEmailRoute = RouteKey{Area: "account", Controller: "confirmation", Action: "confirm"}
	// PasswordResetRoute targets the password reset form.
	PasswordResetRoute = RouteKey{Area: "account", Controller: "password-reset", Action: "confirm"}
)

// DefaultRoutes maps the account actions to the paths AccountController serves.
func DefaultRoutes() map[RouteKey]string {
	return map[RouteKey]string{
		ConfirmEmailRoute:  "/account/confirm",
		PasswordResetRoute: "/account/password-reset/confirm",
	}
}

// RouteLinkBuilder resolves actions against a route table and a base URL.
type RouteLinkBuilder struct {
	base   *url.URL
	routes map[RouteKey]string
}

var _ LinkBuilder = (*RouteLinkBuilder)(nil)

// NewRouteLinkBuilder validates baseURL, which must be absolute.
func NewRouteLinkBuilder(baseURL string, routes map[RouteKey]string) (*RouteLinkBuilder, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid base url")
	}

	if !base.IsAbs() || base.Host == "" {
		return nil, goerrors.NewValidation("invalid link builder configuration",
			goerrors.FieldError{Field: "base_url", Message: "must be an absolute url"},
		)
	}

	if routes == nil {
		routes = DefaultRoutes()
	}

	return &RouteLinkBuilder{
		base:   base,
		routes: routes,
	}, nil
}

// BuildLink returns an absolute URL with values encoded as query parameters.
// Route paths are appended to the base URL path.
func (b *RouteLinkBuilder) BuildLink(area, controller, action string, values map[string]string) (string, error) {
	key := RouteKey{Area: area, Controller: controller, Action: action}
	path, ok := b.routes[key]
	if !ok {
		return "", goerrors.New("no route registered for action", goerrors.CategoryNotFound).
			WithTextCode(TextCodeLinkUnavailable).
			WithMetadata(map[string]any{
				"area":       area,
				"controller": controller,
				"action":     action,
			})
	}

	ref, err := url.Parse(path)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "invalid route path")
	}

	link := *b.base
	link.Path = strings.TrimRight(b.base.Path, "/") + "/" + strings.TrimLeft(ref.Path, "/")
	link.RawQuery = ref.RawQuery
	link.Fragment = ""
	if len(values) > 0 {
		query := link.Query()
		for k, v := range values {
			query.Set(k, v)
		}
		link.RawQuery = query.Encode()
	}

	return link.String(), nil
}
