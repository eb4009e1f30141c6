package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/application"
	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/config"
	httptransport "github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/http"
	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/persistence"
	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.Open(sqlite.DefaultConfig(cfg.SQLiteDSN))
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close store", "error", cerr)
		}
	}()

	if err := store.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	if err := bootstrapAdminAccount(context.Background(), store, cfg, logger); err != nil {
		logger.Error("failed to bootstrap admin account", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	teacherService := application.NewTeacherServiceWithLogger(store.Teachers, idGenerator, now, logger)
	classService := application.NewClassServiceWithLogger(store.Classes, teacherService, idGenerator, now, logger)
	studentService := application.NewStudentServiceWithLogger(store.Students, idGenerator, now, logger)
	enrollmentService := application.NewEnrollmentServiceWithLogger(store.Enrollments, store.Students, idGenerator, now, logger)
	attendanceService := application.NewAttendanceServiceWithLogger(store.Attendance, store.Classes, idGenerator, now, logger)
	salaryService := application.NewSalaryServiceWithLogger(store.Classes, store.Attendance, logger)
	authService := application.NewAuthServiceWithLogger(store.Accounts, store.Sessions, nil, tokenGenerator, now, cfg.SessionTTL, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:       httptransport.NewAuthHandler(authService, logger),
		Classes:    httptransport.NewClassHandler(classService, enrollmentService, logger),
		Teachers:   httptransport.NewTeacherHandler(teacherService, logger),
		Students:   httptransport.NewStudentHandler(studentService, logger),
		Attendance: httptransport.NewAttendanceHandler(attendanceService, logger),
		Reports:    httptransport.NewReportHandler(salaryService, logger),
	})

	protected := httptransport.RequireSession(authService, logger)(router)
	handler := httptransport.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.EqualFold(r.URL.Path, "/login") {
			router.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	}))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("art center API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// bootstrapAdminAccount seeds the configured admin login on first start so a
// fresh deployment has a way in. An existing account with the same email is
// left untouched.
func bootstrapAdminAccount(ctx context.Context, store *sqlite.Store, cfg config.Config, logger *slog.Logger) error {
	if cfg.BootstrapAdminEmail == "" {
		return nil
	}

	_, err := store.Accounts.GetAccountByEmail(ctx, cfg.BootstrapAdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, persistence.ErrNotFound) {
		return err
	}

	hash, err := application.CreatePasswordHash(cfg.BootstrapAdminPassword, application.DefaultArgon2idParams)
	if err != nil {
		return err
	}

	account := persistence.StaffAccount{
		ID:           uuid.NewString(),
		Email:        cfg.BootstrapAdminEmail,
		DisplayName:  "Administrator",
		IsAdmin:      true,
		PasswordHash: hash,
	}
	if err := store.Accounts.CreateAccount(ctx, account); err != nil {
		return err
	}

	logger.Info("bootstrapped admin account", "email", cfg.BootstrapAdminEmail)
	return nil
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
