package controller

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/errors"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/builder"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/predicate"

	"github.com/lukaszraczylo/kubesecrets/pkg/constants"
	"github.com/lukaszraczylo/kubesecrets/pkg/metrics"
	"github.com/lukaszraczylo/kubesecrets/pkg/operrors"
	"github.com/lukaszraczylo/kubesecrets/pkg/store"
	"github.com/lukaszraczylo/kubesecrets/pkg/template"
)

// GeneratedSecretReconciler turns the deletion of a generated secret into a
// regeneration. It strips the operator finalizer so the deletion completes and
// then renders the owning template again.
type GeneratedSecretReconciler struct {
	Store    store.Store
	Renderer *template.Renderer
	DryRun   bool
}

// Reconcile drives one generated secret through the finalizer protocol.
func (r *GeneratedSecretReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	logger := log.FromContext(ctx).WithValues("namespace", req.Namespace, "name", req.Name)

	secret, err := r.Store.GetSecret(ctx, req.Namespace, req.Name)
	if err != nil {
		if errors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}
		logger.Error(err, "failed to get generated secret")
		return ctrl.Result{}, operrors.Store("get generated secret", err)
	}

	if secret.DeletionTimestamp.IsZero() {
		return ctrl.Result{}, nil
	}

	// Leave the secret alone while other controllers still hold finalizers on it.
	if !holdsOnlyOurFinalizer(secret) {
		logger.V(1).Info("deletion pending on foreign finalizers, skipping", "finalizers", secret.Finalizers)
		return ctrl.Result{}, nil
	}

	if r.DryRun {
		logger.Info("dry run: would release generated secret for regeneration")
		return ctrl.Result{}, nil
	}

	if err := r.Store.RemoveFinalizer(ctx, secret.Namespace, secret.Name, constants.FinalizerName); err != nil {
		if errors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}
		logger.Error(err, "failed to remove finalizer")
		return ctrl.Result{}, operrors.Store("remove finalizer", err)
	}

	metrics.RecordRegeneration()
	logger.Info("finalizer removed, regenerating secret")

	owner, err := template.ResolveOwner(secret)
	if err != nil {
		logger.Error(err, "generated secret has no usable owner reference")
		return ctrl.Result{}, err
	}

	tmpl, err := r.Store.GetSecretTemplate(ctx, owner.Key.Namespace, owner.Key.Name)
	if err != nil {
		if errors.IsNotFound(err) {
			// Owner is gone, the deletion was a cascade
			logger.Info("owning template no longer exists, not regenerating", "template", owner.Key)
			return ctrl.Result{}, nil
		}
		logger.Error(err, "failed to get owning template", "template", owner.Key)
		return ctrl.Result{}, operrors.Store("get secret template", err)
	}

	if !tmpl.DeletionTimestamp.IsZero() {
		logger.Info("owning template is being deleted, not regenerating", "template", owner.Key)
		return ctrl.Result{}, nil
	}

	// Reuse the template controller's render-and-create logic
	templateReconciler := &SecretTemplateReconciler{
		Store:    r.Store,
		Renderer: r.Renderer,
	}

	if err := templateReconciler.renderAndCreate(ctx, tmpl); err != nil {
		logger.Error(err, "failed to regenerate secret", "template", owner.Key)
		return ctrl.Result{}, err
	}

	return ctrl.Result{}, nil
}

// holdsOnlyOurFinalizer reports whether the operator finalizer is the only one.
func holdsOnlyOurFinalizer(secret *corev1.Secret) bool {
	return len(secret.Finalizers) == 1 && secret.Finalizers[0] == constants.FinalizerName
}

// SetupWithManager sets up the controller with the Manager.
func (r *GeneratedSecretReconciler) SetupWithManager(mgr ctrl.Manager, opts controller.Options) error {
	// Only secrets guarded by our finalizer are generated secrets.
	generatedPredicate := predicate.NewPredicateFuncs(func(obj client.Object) bool {
		return controllerutil.ContainsFinalizer(obj, constants.FinalizerName)
	})

	return ctrl.NewControllerManagedBy(mgr).
		For(&corev1.Secret{}, builder.WithPredicates(generatedPredicate)).
		Named(constants.GeneratedSecretControllerName).
		WithOptions(opts).
		Complete(r)
}
