// Package http wires the JSON {success,data?,error?} handlers onto the
// usecase command/query handlers over net/http ServeMux method-pattern
// routing (Go 1.22+); the surface is small enough that a router library
// would add nothing.
package http

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/shortlink-org/shop/oms/internal/domain"
)

// actorFromRequest extracts the caller identity from trusted headers set by
// the upstream gateway/reverse-proxy that terminates real authentication;
// this process only ever sees the already-authenticated (id, role, shopId?)
// tuple.
func actorFromRequest(r *http.Request) (domain.Actor, error) {
	role := domain.Role(r.Header.Get("X-Actor-Role"))
	if role == "" {
		return domain.Actor{}, domain.Wrap(domain.ErrForbidden, "missing actor role", nil)
	}

	idStr := r.Header.Get("X-Actor-Id")

	id, err := uuid.Parse(idStr)
	if err != nil {
		return domain.Actor{}, domain.Wrap(domain.ErrForbidden, "missing or malformed actor id", nil)
	}

	actor := domain.Actor{ID: id, Role: role}

	if shopIDStr := r.Header.Get("X-Shop-Id"); shopIDStr != "" {
		shopID, err := uuid.Parse(shopIDStr)
		if err != nil {
			return domain.Actor{}, domain.Wrap(domain.ErrForbidden, "malformed shop id", nil)
		}

		actor.ShopID = &shopID
	}

	return actor, nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(r.PathValue(name))
}
