// Package controller implements the kubesecrets reconciliation logic.
package controller

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/lukaszraczylo/kubesecrets/pkg/constants"
	"github.com/lukaszraczylo/kubesecrets/pkg/filter"
	"github.com/lukaszraczylo/kubesecrets/pkg/metrics"
	"github.com/lukaszraczylo/kubesecrets/pkg/operrors"
	"github.com/lukaszraczylo/kubesecrets/pkg/store"
)

// Syncer propagates source secrets into the namespaces their glob rules select.
type Syncer struct {
	Store store.Store
	// Filter is the operator-wide namespace filter (optional).
	Filter       *filter.NamespaceFilter
	FieldManager string
	DryRun       bool
}

// Sync applies every eligible secret to every namespace it selects.
// Ineligible secrets are ignored and a secret without an allow list is
// skipped with a warning. The first compile or apply error aborts the run.
func (s *Syncer) Sync(ctx context.Context, secrets []corev1.Secret, namespaces []corev1.Namespace) error {
	logger := log.FromContext(ctx)

	for i := range secrets {
		secret := &secrets[i]
		secretLogger := logger.WithValues("sourceNamespace", secret.Namespace, "secret", secret.Name)

		if !Eligible(secret) || isBlacklistedType(secret.Type) {
			continue
		}

		allow, deny, err := GetGlobbers(secret.Annotations)
		if err != nil {
			return fmt.Errorf("secret %s/%s: %w", secret.Namespace, secret.Name, err)
		}
		if allow == nil {
			secretLogger.Info("warning: secret is enabled but has no namespace allow list, skipping",
				"annotation", constants.AnnotationNamespaces)
			continue
		}

		for j := range namespaces {
			ns := &namespaces[j]
			if !s.selects(secretLogger.WithValues("targetNamespace", ns.Name), secret, ns, allow, deny) {
				continue
			}
			if err := s.apply(ctx, secret, ns.Name); err != nil {
				return err
			}
		}
	}

	return nil
}

// selects reports whether ns should receive a copy of secret.
func (s *Syncer) selects(logger logr.Logger, secret *corev1.Secret, ns *corev1.Namespace, allow, deny *filter.GlobList) bool {
	switch {
	case !Eligible(ns):
		logger.V(1).Info("namespace not enabled for propagation, skipping")
		return false
	case ns.Name == secret.Namespace:
		return false
	case s.Filter != nil && !s.Filter.IsAllowed(ns.Name):
		logger.V(1).Info("namespace filtered out, skipping")
		return false
	case !allow.Match(ns.Name):
		logger.V(1).Info("namespace not in allow list, skipping")
		return false
	case deny.Match(ns.Name):
		logger.V(1).Info("namespace denied, skipping")
		return false
	}

	return true
}

// apply writes the propagated copy of secret into targetNamespace.
func (s *Syncer) apply(ctx context.Context, secret *corev1.Secret, targetNamespace string) error {
	logger := log.FromContext(ctx).WithValues(
		"sourceNamespace", secret.Namespace,
		"secret", secret.Name,
		"targetNamespace", targetNamespace,
	)

	target := BuildPropagatedSecret(secret, targetNamespace)

	if s.DryRun {
		logger.Info("dry run: would propagate secret")
		metrics.RecordPropagation(metrics.ResultDryRun)
		return nil
	}

	fieldManager := s.FieldManager
	if fieldManager == "" {
		fieldManager = constants.FieldManager
	}

	if err := s.Store.ApplySecret(ctx, target, fieldManager); err != nil {
		metrics.RecordPropagation(metrics.ResultError)
		return operrors.Store("apply propagated secret", err)
	}

	metrics.RecordPropagation(metrics.ResultApplied)
	logger.Info("secret propagated")
	return nil
}

func isBlacklistedType(secretType corev1.SecretType) bool {
	for _, t := range constants.BlacklistedSecretTypes {
		if string(secretType) == t {
			return true
		}
	}
	return false
}
