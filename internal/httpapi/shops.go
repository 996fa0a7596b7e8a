// Shop handlers: create, list, read, full-field update, guarded delete.
package httpapi

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// urlID parses the {id} route parameter. A malformed id is a client
// error, not a missing resource.
func urlID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) postShop(w http.ResponseWriter, r *http.Request) {
	var req shopRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	sh, err := s.shops.Create(r.Context(), req.Name, req.Email, req.Phone)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toShopResponse(sh))
}

func (s *Server) listShops(w http.ResponseWriter, r *http.Request) {
	shops, err := s.shops.List(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	out := make([]shopResponse, 0, len(shops))
	for _, sh := range shops {
		out = append(out, toShopResponse(sh))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getShop(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	sh, err := s.shops.Get(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toShopResponse(sh))
}

func (s *Server) updateShop(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	var req shopRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	sh, err := s.shops.Update(r.Context(), id, req.Name, req.Email, req.Phone)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toShopResponse(sh))
}

func (s *Server) deleteShop(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	if err := s.shops.Delete(r.Context(), id); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
