// Customer handlers. Creation and listing are shop-scoped; the owning
// shop is fixed for the life of the customer.
package httpapi

import "net/http"

func (s *Server) postCustomer(w http.ResponseWriter, r *http.Request) {
	shopID, ok := urlID(w, r)
	if !ok {
		return
	}
	var req customerRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	c, err := s.customers.Create(r.Context(), shopID, req.Name, req.Email, req.Phone)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toCustomerResponse(c))
}

func (s *Server) listCustomers(w http.ResponseWriter, r *http.Request) {
	shopID, ok := urlID(w, r)
	if !ok {
		return
	}
	customers, err := s.customers.ListByShop(r.Context(), shopID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	out := make([]customerResponse, 0, len(customers))
	for _, c := range customers {
		out = append(out, toCustomerResponse(c))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	c, err := s.customers.Get(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toCustomerResponse(c))
}

func (s *Server) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	var req customerUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	c, err := s.customers.Update(r.Context(), id, req.ShopID, req.Name, req.Email, req.Phone)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toCustomerResponse(c))
}

func (s *Server) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	if err := s.customers.Delete(r.Context(), id); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
