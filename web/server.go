package web

import (
	"log"
	"net/http"
	"os"
	"path"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/mogaika/anmerge/rules"
	"github.com/mogaika/anmerge/status"
	"github.com/mogaika/anmerge/vfs"
)

// Server browses clips, rules and cookbooks of one directory
type Server struct {
	Dir      vfs.Directory
	Registry *rules.Registry
	Status   *status.Hub
}

func NewServer(d vfs.Directory, reg *rules.Registry) *Server {
	return &Server{
		Dir:      d,
		Registry: reg,
		Status:   status.NewHub(),
	}
}

func (s *Server) Router(webPath string) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/json/clips", s.HandlerAjaxClips).Methods("GET")
	r.HandleFunc("/json/clip/{file}", s.HandlerAjaxClip).Methods("GET")
	r.HandleFunc("/json/cookbooks", s.HandlerAjaxCookbooks).Methods("GET")
	r.HandleFunc("/json/cookbook/{file}", s.HandlerAjaxCookbook).Methods("GET", "POST")
	r.HandleFunc("/json/rules", s.HandlerAjaxRules).Methods("GET")
	r.HandleFunc("/json/ani/{file}", s.HandlerAjaxAni).Methods("GET")
	r.HandleFunc("/dump/cookbook/{file}/{format}", s.HandlerDumpCookbook).Methods("GET", "POST")
	r.HandleFunc("/dump/rules", s.HandlerDumpRules).Methods("GET")
	r.Handle("/ws/status", s.Status)

	if webPath != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(path.Join(webPath, "data"))))
	}
	return r
}

func (s *Server) Start(addr string, webPath string) error {
	h := handlers.RecoveryHandler()(s.Router(webPath))
	h = handlers.LoggingHandler(os.Stdout, h)

	log.Printf("[web] Starting server %v", addr)

	return http.ListenAndServe(addr, h)
}
