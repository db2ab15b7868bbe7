package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests, s.injectFaults)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
	}).Methods(http.MethodGet)

	a := r.PathPrefix("/auth").Subrouter()
	a.HandleFunc("/inscription", s.registerClient).Methods(http.MethodPost)
	a.HandleFunc("/inscription-pro", s.registerPro).Methods(http.MethodPost)
	a.HandleFunc("/verification-email", s.verifyEmail).Methods(http.MethodPost)
	a.HandleFunc("/envoyer-code", s.resendCode).Methods(http.MethodPost)
	a.HandleFunc("/connexion", s.login).Methods(http.MethodPost)
	a.HandleFunc("/rafraichir", s.refresh).Methods(http.MethodPost)
	a.HandleFunc("/specialites", s.specialties).Methods(http.MethodGet)
	a.HandleFunc("/mot-de-passe-oublie", s.forgotPassword).Methods(http.MethodPost)
	a.HandleFunc("/reinitialiser-mot-de-passe", s.resetPassword).Methods(http.MethodPost)

	a.Handle("/moi", s.requireAccessToken(http.HandlerFunc(s.me))).Methods(http.MethodGet)

	return r
}
