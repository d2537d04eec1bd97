// Package store provides the cluster access used by the controllers.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"gomodules.xyz/jsonpatch/v2"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	v1 "github.com/lukaszraczylo/kubesecrets/api/v1"
)

// finalizerPath is the JSON pointer of the first finalizer entry.
const finalizerPath = "/metadata/finalizers/0"

// Store is the subset of the Kubernetes API the controllers depend on.
type Store interface {
	ListSecrets(ctx context.Context, opts ...client.ListOption) ([]corev1.Secret, error)
	ListNamespaces(ctx context.Context, opts ...client.ListOption) ([]corev1.Namespace, error)
	GetSecret(ctx context.Context, namespace, name string) (*corev1.Secret, error)
	GetNamespace(ctx context.Context, name string) (*corev1.Namespace, error)
	GetSecretTemplate(ctx context.Context, namespace, name string) (*v1.SecretTemplate, error)
	// ApplySecret server-side applies secret, forcing ownership of conflicting fields.
	ApplySecret(ctx context.Context, secret *corev1.Secret, fieldManager string) error
	// CreateSecret creates secret. It reports false without error if it already exists.
	CreateSecret(ctx context.Context, secret *corev1.Secret) (bool, error)
	// RemoveFinalizer removes finalizer from the secret if, and only if, it is the
	// first entry of the finalizer list.
	RemoveFinalizer(ctx context.Context, namespace, name, finalizer string) error
}

// KubernetesStore implements Store using a controller-runtime client.
type KubernetesStore struct {
	client client.Client
	// apiReader provides direct API access bypassing cache (optional).
	// When set, it's used for list calls where cache staleness can hide
	// freshly labelled secrets and namespaces.
	apiReader client.Reader
}

// NewKubernetesStore creates a new KubernetesStore.
func NewKubernetesStore(c client.Client) *KubernetesStore {
	return &KubernetesStore{
		client: c,
	}
}

// NewKubernetesStoreWithAPIReader creates a KubernetesStore that lists through
// the uncached reader.
func NewKubernetesStoreWithAPIReader(c client.Client, apiReader client.Reader) *KubernetesStore {
	return &KubernetesStore{
		client:    c,
		apiReader: apiReader,
	}
}

// listReader returns apiReader if available, otherwise the cached client.
func (k *KubernetesStore) listReader() client.Reader {
	if k.apiReader != nil {
		return k.apiReader
	}
	return k.client
}

// ListSecrets returns the secrets matching opts.
func (k *KubernetesStore) ListSecrets(ctx context.Context, opts ...client.ListOption) ([]corev1.Secret, error) {
	secretList := &corev1.SecretList{}
	if err := k.listReader().List(ctx, secretList, opts...); err != nil {
		return nil, err
	}
	return secretList.Items, nil
}

// ListNamespaces returns the namespaces matching opts.
func (k *KubernetesStore) ListNamespaces(ctx context.Context, opts ...client.ListOption) ([]corev1.Namespace, error) {
	namespaceList := &corev1.NamespaceList{}
	if err := k.listReader().List(ctx, namespaceList, opts...); err != nil {
		return nil, err
	}
	return namespaceList.Items, nil
}

// GetSecret fetches a secret by namespace and name.
func (k *KubernetesStore) GetSecret(ctx context.Context, namespace, name string) (*corev1.Secret, error) {
	secret := &corev1.Secret{}
	if err := k.client.Get(ctx, types.NamespacedName{Namespace: namespace, Name: name}, secret); err != nil {
		return nil, err
	}
	return secret, nil
}

// GetNamespace fetches a namespace by name.
func (k *KubernetesStore) GetNamespace(ctx context.Context, name string) (*corev1.Namespace, error) {
	namespace := &corev1.Namespace{}
	if err := k.client.Get(ctx, types.NamespacedName{Name: name}, namespace); err != nil {
		return nil, err
	}
	return namespace, nil
}

// GetSecretTemplate fetches a SecretTemplate by namespace and name.
func (k *KubernetesStore) GetSecretTemplate(ctx context.Context, namespace, name string) (*v1.SecretTemplate, error) {
	tmpl := &v1.SecretTemplate{}
	if err := k.client.Get(ctx, types.NamespacedName{Namespace: namespace, Name: name}, tmpl); err != nil {
		return nil, err
	}
	return tmpl, nil
}

// ApplySecret server-side applies secret as fieldManager.
func (k *KubernetesStore) ApplySecret(ctx context.Context, secret *corev1.Secret, fieldManager string) error {
	// Apply patches require the full type information in the body.
	obj := secret.DeepCopy()
	obj.APIVersion = "v1"
	obj.Kind = "Secret"
	obj.ResourceVersion = ""
	obj.ManagedFields = nil

	//nolint:staticcheck // typed apply configurations do not cover arbitrary Secret payloads
	if err := k.client.Patch(ctx, obj, client.Apply, client.FieldOwner(fieldManager), client.ForceOwnership); err != nil {
		return fmt.Errorf("failed to apply secret %s/%s: %w", secret.Namespace, secret.Name, err)
	}
	return nil
}

// CreateSecret creates secret, treating AlreadyExists as a no-op.
func (k *KubernetesStore) CreateSecret(ctx context.Context, secret *corev1.Secret) (bool, error) {
	if err := k.client.Create(ctx, secret); err != nil {
		if apierrors.IsAlreadyExists(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// RemoveFinalizer issues a JSON patch that tests the first finalizer before
// removing it, so a concurrent change to the list fails the patch.
func (k *KubernetesStore) RemoveFinalizer(ctx context.Context, namespace, name, finalizer string) error {
	patch, err := FinalizerRemovalPatch(finalizer)
	if err != nil {
		return err
	}

	secret := &corev1.Secret{}
	secret.Namespace = namespace
	secret.Name = name

	if err := k.client.Patch(ctx, secret, client.RawPatch(types.JSONPatchType, patch)); err != nil {
		return fmt.Errorf("failed to remove finalizer from secret %s/%s: %w", namespace, name, err)
	}
	return nil
}

// FinalizerRemovalPatch builds the test-and-remove JSON patch for finalizer.
func FinalizerRemovalPatch(finalizer string) ([]byte, error) {
	ops := []jsonpatch.Operation{
		jsonpatch.NewOperation("test", finalizerPath, finalizer),
		jsonpatch.NewOperation("remove", finalizerPath, nil),
	}
	return json.Marshal(ops)
}
