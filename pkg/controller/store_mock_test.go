package controller

import (
	"context"

	"github.com/stretchr/testify/mock"
	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	v1 "github.com/lukaszraczylo/kubesecrets/api/v1"
)

// MockStore is a mock implementation of store.Store for testing.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) ListSecrets(ctx context.Context, opts ...client.ListOption) ([]corev1.Secret, error) {
	args := m.Called(ctx, opts)
	if s := args.Get(0); s != nil {
		return s.([]corev1.Secret), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) ListNamespaces(ctx context.Context, opts ...client.ListOption) ([]corev1.Namespace, error) {
	args := m.Called(ctx, opts)
	if ns := args.Get(0); ns != nil {
		return ns.([]corev1.Namespace), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) GetSecret(ctx context.Context, namespace, name string) (*corev1.Secret, error) {
	args := m.Called(ctx, namespace, name)
	if s := args.Get(0); s != nil {
		return s.(*corev1.Secret), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) GetNamespace(ctx context.Context, name string) (*corev1.Namespace, error) {
	args := m.Called(ctx, name)
	if ns := args.Get(0); ns != nil {
		return ns.(*corev1.Namespace), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) GetSecretTemplate(ctx context.Context, namespace, name string) (*v1.SecretTemplate, error) {
	args := m.Called(ctx, namespace, name)
	if t := args.Get(0); t != nil {
		return t.(*v1.SecretTemplate), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) ApplySecret(ctx context.Context, secret *corev1.Secret, fieldManager string) error {
	args := m.Called(ctx, secret, fieldManager)
	return args.Error(0)
}

func (m *MockStore) CreateSecret(ctx context.Context, secret *corev1.Secret) (bool, error) {
	args := m.Called(ctx, secret)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) RemoveFinalizer(ctx context.Context, namespace, name, finalizer string) error {
	args := m.Called(ctx, namespace, name, finalizer)
	return args.Error(0)
}

// applied returns the secrets passed to ApplySecret, in call order.
func (m *MockStore) applied() []*corev1.Secret {
	var out []*corev1.Secret
	for _, call := range m.Calls {
		if call.Method == "ApplySecret" {
			out = append(out, call.Arguments.Get(1).(*corev1.Secret))
		}
	}
	return out
}
