package di

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/kbukum/beankit/errors"
)

// Sentinels for errors.Is. Every error the container returns is derived
// from one of these and matches it by code.
var (
	ErrDuplicateDefinition = errors.New(errors.ErrCodeDuplicateDefinition, "bean definition already registered", http.StatusConflict)
	ErrInvalidDefinition   = errors.New(errors.ErrCodeInvalidDefinition, "invalid bean definition", http.StatusBadRequest)
	ErrRegistryFrozen      = errors.New(errors.ErrCodeRegistryFrozen, "registry is frozen", http.StatusConflict)
	ErrUnknownScope        = errors.New(errors.ErrCodeUnknownScope, "unknown scope", http.StatusBadRequest)
	ErrNoSuchBean          = errors.New(errors.ErrCodeNoSuchBean, "no such bean", http.StatusNotFound)
	ErrAmbiguousDependency = errors.New(errors.ErrCodeAmbiguousDependency, "ambiguous dependency", http.StatusConflict)
	ErrCircularDependency  = errors.New(errors.ErrCodeCircularDependency, "circular dependency", http.StatusConflict)
	ErrTypeMismatch        = errors.New(errors.ErrCodeTypeMismatch, "bean type mismatch", http.StatusInternalServerError)
	ErrConstructionFailed  = errors.New(errors.ErrCodeConstructionFailed, "bean construction failed", http.StatusInternalServerError)
	ErrNoActiveScope       = errors.New(errors.ErrCodeNoActiveScope, "no active scope", http.StatusInternalServerError)
	ErrScopeAlreadyActive  = errors.New(errors.ErrCodeScopeAlreadyActive, "scope already active", http.StatusConflict)
	ErrContainerClosed     = errors.New(errors.ErrCodeContainerClosed, "container is closed", http.StatusServiceUnavailable)
	ErrDestroyFailed       = errors.New(errors.ErrCodeDestroyFailed, "bean destruction failed", http.StatusInternalServerError)
)

func errDuplicateDefinition(id string) *errors.AppError {
	return ErrDuplicateDefinition.Derive(fmt.Sprintf("bean %q is already registered", id)).
		WithDetail("bean", id)
}

func errInvalidDefinition(id string, cause error) *errors.AppError {
	msg := "invalid bean definition"
	if id != "" {
		msg = fmt.Sprintf("invalid bean definition %q", id)
	}
	appErr := ErrInvalidDefinition.Derive(msg).WithCause(cause)
	if v, ok := errors.AsAppError(cause); ok {
		appErr.WithDetails(v.Details)
	}
	return appErr
}

func errRegistryFrozen(id string) *errors.AppError {
	return ErrRegistryFrozen.Derive(fmt.Sprintf("cannot register %q: registry is frozen", id)).
		WithDetail("bean", id)
}

func errUnknownScope(kind ScopeKind) *errors.AppError {
	return ErrUnknownScope.Derive(fmt.Sprintf("scope %q is not managed by this container", kind)).
		WithDetail("scope", string(kind))
}

func errNoSuchBean(what string) *errors.AppError {
	return ErrNoSuchBean.Derive("no bean matches " + what).WithDetail("query", what)
}

func errAmbiguous(what string, candidates []*Definition) *errors.AppError {
	ids := beanIDs(candidates)
	msg := fmt.Sprintf("%d beans match %s and none is primary: %s", len(ids), what, strings.Join(ids, ", "))
	return ErrAmbiguousDependency.Derive(msg).
		WithDetail("query", what).
		WithDetail("candidates", ids)
}

func errCircular(path []string) *errors.AppError {
	return ErrCircularDependency.Derive("circular dependency: "+strings.Join(path, " -> ")).
		WithDetail("path", path)
}

func errTypeMismatch(id string, got any, want string) *errors.AppError {
	actual := fmt.Sprintf("%T", got)
	return ErrTypeMismatch.Derive(fmt.Sprintf("bean %q is %s, expected %s", id, actual, want)).
		WithDetails(map[string]any{"bean": id, "expected": want, "actual": actual})
}

func errConstruction(id, phase string, cause error) *errors.AppError {
	return ErrConstructionFailed.Derive(fmt.Sprintf("bean %q: %s failed", id, phase)).
		WithDetails(map[string]any{"bean": id, "phase": phase}).
		WithCause(cause)
}

func errNoActiveScope(kind ScopeKind) *errors.AppError {
	return ErrNoActiveScope.Derive(fmt.Sprintf("no active %s scope", kind)).
		WithDetail("scope", string(kind))
}

func errScopeAlreadyActive(kind ScopeKind) *errors.AppError {
	return ErrScopeAlreadyActive.Derive(fmt.Sprintf("a %s scope is already active", kind)).
		WithDetail("scope", string(kind))
}

func errContainerClosed() *errors.AppError {
	return ErrContainerClosed.Derive(ErrContainerClosed.Message)
}

func errDestroyFailed(failures []error) *errors.AppError {
	return ErrDestroyFailed.Derive(fmt.Sprintf("%d bean(s) failed to destroy", len(failures))).
		WithDetail("failures", len(failures)).
		WithCause(stderrors.Join(failures...))
}

func beanIDs(defs []*Definition) []string {
	ids := make([]string, len(defs))
	for i, d := range defs {
		ids[i] = d.ID
	}
	return ids
}
