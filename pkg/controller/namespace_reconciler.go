// Package controller implements the kubesecrets reconciliation logic.
package controller

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller"
	"sigs.k8s.io/controller-runtime/pkg/event"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/predicate"

	"github.com/lukaszraczylo/kubesecrets/pkg/constants"
	"github.com/lukaszraczylo/kubesecrets/pkg/store"
)

// NamespaceSyncReconciler watches for namespace CREATE and UPDATE events
// and propagates every source secret that selects the namespace.
type NamespaceSyncReconciler struct {
	Store  store.Store
	Syncer *Syncer
}

// Reconcile syncs all enabled secrets against one namespace.
func (r *NamespaceSyncReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	logger := log.FromContext(ctx).WithValues("namespace", req.Name)

	namespace, err := r.Store.GetNamespace(ctx, req.Name)
	if err != nil {
		// Namespace was deleted - nothing to do
		return ctrl.Result{}, client.IgnoreNotFound(err)
	}

	if !Eligible(namespace) {
		logger.V(1).Info("namespace not enabled for propagation, skipping")
		return ctrl.Result{}, nil
	}

	secrets, err := r.Store.ListSecrets(ctx, client.HasLabels{constants.LabelEnabled})
	if err != nil {
		logger.Error(err, "failed to list enabled secrets")
		return ctrl.Result{}, err
	}

	logger.V(1).Info("namespace event detected, syncing source secrets", "candidates", len(secrets))

	if err := r.Syncer.Sync(ctx, secrets, []corev1.Namespace{*namespace}); err != nil {
		logger.Error(err, "failed to propagate secrets into namespace")
		return ctrl.Result{}, err
	}

	return ctrl.Result{}, nil
}

// namespacePredicate passes new namespaces and namespaces whose propagation
// metadata changed.
func namespacePredicate() predicate.Funcs {
	return predicate.Funcs{
		CreateFunc: func(e event.CreateEvent) bool {
			return Eligible(e.Object)
		},
		UpdateFunc: func(e event.UpdateEvent) bool {
			if !Eligible(e.ObjectNew) {
				return false
			}
			// Newly enabled namespaces must be synced, label churn on others is ignored
			return !Eligible(e.ObjectOld)
		},
		DeleteFunc: func(e event.DeleteEvent) bool {
			// Copies in a deleted namespace go with it
			return false
		},
		GenericFunc: func(e event.GenericEvent) bool {
			return Eligible(e.Object)
		},
	}
}

// SetupWithManager sets up the controller with the Manager.
func (r *NamespaceSyncReconciler) SetupWithManager(mgr ctrl.Manager, opts controller.Options) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&corev1.Namespace{}).
		Named(constants.NamespaceSyncControllerName).
		WithEventFilter(namespacePredicate()).
		WithOptions(opts).
		Complete(r)
}
