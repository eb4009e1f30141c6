package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Auth       *AuthHandler
	Classes    *ClassHandler
	Teachers   *TeacherHandler
	Students   *StudentHandler
	Attendance *AttendanceHandler
	Reports    *ReportHandler
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Auth != nil {
		mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.Login(w, r)
		})
		mux.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.Logout(w, r)
		})
	}

	if cfg.Classes != nil {
		mux.HandleFunc("/classes", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Classes.List(w, r)
			case http.MethodPost:
				cfg.Classes.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/classes/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/classes/")
			if rest == "" {
				http.NotFound(w, r)
				return
			}

			parts := strings.Split(rest, "/")
			id := parts[0]
			ctx := ContextWithClassID(r.Context(), id)
			r = r.WithContext(ctx)

			switch {
			case len(parts) == 1:
				switch r.Method {
				case http.MethodGet:
					cfg.Classes.Get(w, r)
				case http.MethodPut:
					cfg.Classes.Update(w, r)
				case http.MethodDelete:
					cfg.Classes.Delete(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
				}
			case len(parts) == 2 && parts[1] == "sessions":
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Classes.Sessions(w, r)
			case len(parts) == 2 && parts[1] == "students":
				switch r.Method {
				case http.MethodGet:
					cfg.Classes.Roster(w, r)
				case http.MethodPost:
					cfg.Classes.Enroll(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPost)
				}
			case len(parts) == 3 && parts[1] == "students":
				if r.Method != http.MethodDelete {
					methodNotAllowed(w, http.MethodDelete)
					return
				}
				cfg.Classes.Unenroll(w, r, parts[2])
			default:
				http.NotFound(w, r)
			}
		})
	}

	if cfg.Teachers != nil {
		mux.HandleFunc("/teachers", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Teachers.List(w, r)
			case http.MethodPost:
				cfg.Teachers.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/teachers/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/teachers/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			ctx := ContextWithTeacherID(r.Context(), id)
			r = r.WithContext(ctx)
			switch r.Method {
			case http.MethodGet:
				cfg.Teachers.Get(w, r)
			case http.MethodPut:
				cfg.Teachers.Update(w, r)
			case http.MethodDelete:
				cfg.Teachers.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		})
	}

	if cfg.Students != nil {
		mux.HandleFunc("/students", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Students.List(w, r)
			case http.MethodPost:
				cfg.Students.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/students/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/students/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			ctx := ContextWithStudentID(r.Context(), id)
			r = r.WithContext(ctx)
			switch r.Method {
			case http.MethodGet:
				cfg.Students.Get(w, r)
			case http.MethodPut:
				cfg.Students.Update(w, r)
			case http.MethodDelete:
				cfg.Students.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		})
	}

	if cfg.Attendance != nil {
		mux.HandleFunc("/attendance", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Attendance.Mark(w, r)
		})
		mux.HandleFunc("/attendance/sheet", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Attendance.Sheet(w, r)
		})
	}

	if cfg.Reports != nil {
		mux.HandleFunc("/reports/salary", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Reports.Salary(w, r)
		})
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
