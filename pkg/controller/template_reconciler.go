// Package controller implements the kubesecrets reconciliation logic.
package controller

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/controller"
	"sigs.k8s.io/controller-runtime/pkg/log"

	v1 "github.com/lukaszraczylo/kubesecrets/api/v1"
	"github.com/lukaszraczylo/kubesecrets/pkg/constants"
	"github.com/lukaszraczylo/kubesecrets/pkg/metrics"
	"github.com/lukaszraczylo/kubesecrets/pkg/operrors"
	"github.com/lukaszraczylo/kubesecrets/pkg/store"
	"github.com/lukaszraczylo/kubesecrets/pkg/template"
)

// SecretTemplateReconciler materializes the Secret described by a SecretTemplate.
type SecretTemplateReconciler struct {
	Store    store.Store
	Renderer *template.Renderer
	DryRun   bool
}

// +kubebuilder:rbac:groups=crd.withlazers.dev,resources=secrettemplates,verbs=get;list;watch
// +kubebuilder:rbac:groups=core,resources=secrets,verbs=get;list;watch;create;patch

// Reconcile renders the template and creates its Secret if it does not exist.
func (r *SecretTemplateReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	logger := log.FromContext(ctx).WithValues("namespace", req.Namespace, "name", req.Name)

	tmpl, err := r.Store.GetSecretTemplate(ctx, req.Namespace, req.Name)
	if err != nil {
		if errors.IsNotFound(err) {
			// Template deleted - the generated secret is garbage collected via its owner reference
			return ctrl.Result{}, nil
		}
		logger.Error(err, "failed to get secret template")
		return ctrl.Result{}, operrors.Store("get secret template", err)
	}

	if !tmpl.DeletionTimestamp.IsZero() {
		return ctrl.Result{}, nil
	}

	if err := r.renderAndCreate(ctx, tmpl); err != nil {
		logger.Error(err, "failed to render secret template")
		return ctrl.Result{}, err
	}

	return ctrl.Result{}, nil
}

// renderAndCreate renders tmpl and creates the generated Secret.
// An existing Secret is left untouched.
func (r *SecretTemplateReconciler) renderAndCreate(ctx context.Context, tmpl *v1.SecretTemplate) error {
	logger := log.FromContext(ctx).WithValues("template", types.NamespacedName{Namespace: tmpl.Namespace, Name: tmpl.Name})

	renderer := r.Renderer
	if renderer == nil {
		renderer = template.NewRenderer(r.Store)
	}

	secret, err := renderer.Render(ctx, tmpl)
	if err != nil {
		metrics.RecordRender(metrics.ResultError)
		return fmt.Errorf("failed to render template %s/%s: %w", tmpl.Namespace, tmpl.Name, err)
	}

	if r.DryRun {
		logger.Info("dry run: would create generated secret", "keys", len(secret.Data))
		metrics.RecordRender(metrics.ResultDryRun)
		return nil
	}

	created, err := r.Store.CreateSecret(ctx, secret)
	if err != nil {
		metrics.RecordRender(metrics.ResultError)
		return operrors.Store("create generated secret", err)
	}

	if !created {
		logger.V(1).Info("generated secret already exists")
		metrics.RecordRender(metrics.ResultExists)
		return nil
	}

	logger.Info("generated secret created")
	metrics.RecordRender(metrics.ResultCreated)
	return nil
}

// SetupWithManager sets up the controller with the Manager.
func (r *SecretTemplateReconciler) SetupWithManager(mgr ctrl.Manager, opts controller.Options) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&v1.SecretTemplate{}).
		// A removed generated secret re-triggers its template
		Owns(&corev1.Secret{}).
		Named(constants.SecretTemplateControllerName).
		WithOptions(opts).
		Complete(r)
}
