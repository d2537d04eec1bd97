// Package controller implements the kubesecrets reconciliation logic.
package controller

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/errors"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/builder"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/predicate"

	"github.com/lukaszraczylo/kubesecrets/pkg/constants"
	"github.com/lukaszraczylo/kubesecrets/pkg/store"
)

// SecretSyncReconciler propagates a source secret whenever it changes.
type SecretSyncReconciler struct {
	Store  store.Store
	Syncer *Syncer
}

// +kubebuilder:rbac:groups=core,resources=secrets,verbs=get;list;watch;create;update;patch
// +kubebuilder:rbac:groups=core,resources=namespaces,verbs=get;list;watch

// Reconcile syncs one source secret against every enabled namespace.
func (r *SecretSyncReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	logger := log.FromContext(ctx).WithValues("namespace", req.Namespace, "name", req.Name)

	secret, err := r.Store.GetSecret(ctx, req.Namespace, req.Name)
	if err != nil {
		if errors.IsNotFound(err) {
			// Deleted - copies are left in place
			return ctrl.Result{}, nil
		}
		logger.Error(err, "failed to get secret")
		return ctrl.Result{}, err
	}

	// Propagated copies never act as sources.
	if !Eligible(secret) {
		return ctrl.Result{}, nil
	}

	namespaces, err := r.Store.ListNamespaces(ctx, client.HasLabels{constants.LabelEnabled})
	if err != nil {
		logger.Error(err, "failed to list enabled namespaces")
		return ctrl.Result{}, err
	}

	if err := r.Syncer.Sync(ctx, []corev1.Secret{*secret}, namespaces); err != nil {
		logger.Error(err, "failed to propagate secret")
		return ctrl.Result{}, err
	}

	return ctrl.Result{}, nil
}

// SetupWithManager sets up the controller with the Manager.
func (r *SecretSyncReconciler) SetupWithManager(mgr ctrl.Manager, opts controller.Options) error {
	// Only labelled secrets that are not copies are sources.
	sourcePredicate := predicate.NewPredicateFuncs(func(obj client.Object) bool {
		return Eligible(obj)
	})

	return ctrl.NewControllerManagedBy(mgr).
		For(&corev1.Secret{}, builder.WithPredicates(sourcePredicate)).
		Named(constants.SecretSyncControllerName).
		WithOptions(opts).
		Complete(r)
}
