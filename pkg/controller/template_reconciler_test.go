package controller

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	v1 "github.com/lukaszraczylo/kubesecrets/api/v1"
	"github.com/lukaszraczylo/kubesecrets/pkg/constants"
	"github.com/lukaszraczylo/kubesecrets/pkg/operrors"
	"github.com/lukaszraczylo/kubesecrets/pkg/store"
)

func ptr[T any](v T) *T {
	return &v
}

func newTestScheme(t *testing.T) *runtime.Scheme {
	t.Helper()
	scheme := runtime.NewScheme()
	require.NoError(t, clientgoscheme.AddToScheme(scheme))
	require.NoError(t, v1.AddToScheme(scheme))
	return scheme
}

func newFakeStore(t *testing.T, objs ...client.Object) (*store.KubernetesStore, client.Client) {
	t.Helper()
	c := fake.NewClientBuilder().WithScheme(newTestScheme(t)).WithObjects(objs...).Build()
	return store.NewKubernetesStore(c), c
}

func makeSecretTemplate(name, namespace string, data map[string]v1.DataTemplate) *v1.SecretTemplate {
	return &v1.SecretTemplate{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
			UID:       "template-uid",
		},
		Spec: v1.SecretTemplateSpec{
			Labels: map[string]string{"app": name},
			Data:   data,
		},
	}
}

func TestSecretTemplateReconciler_CreatesGeneratedSecret(t *testing.T) {
	upstream := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Name: "upstream", Namespace: "team-a"},
		Data:       map[string][]byte{"token": []byte("abc")},
	}
	tmpl := makeSecretTemplate("db", "team-a", map[string]v1.DataTemplate{
		"username": {Plain: ptr("admin")},
		"greeting": {Base64: ptr("aGVsbG8=")},
		"token":    {SecretRef: &corev1.SecretKeySelector{LocalObjectReference: corev1.LocalObjectReference{Name: "upstream"}, Key: "token"}},
		"password": {Generate: &v1.GenerateSpec{Length: 12, MustDigits: ptr(true), MustLetters: ptr(true)}},
	})
	tmpl.Spec.Type = ptr(corev1.SecretTypeOpaque)

	st, c := newFakeStore(t, upstream, tmpl)
	r := &SecretTemplateReconciler{Store: st}

	_, err := r.Reconcile(context.Background(), secretRequest("team-a", "db"))
	require.NoError(t, err)

	secret := &corev1.Secret{}
	require.NoError(t, c.Get(context.Background(), client.ObjectKey{Namespace: "team-a", Name: "db"}, secret))

	assert.Equal(t, []byte("admin"), secret.Data["username"])
	assert.Equal(t, []byte("hello"), secret.Data["greeting"])
	assert.Equal(t, []byte("abc"), secret.Data["token"])
	assert.Len(t, secret.Data["password"], 12)
	assert.Equal(t, corev1.SecretTypeOpaque, secret.Type)
	assert.Equal(t, "db", secret.Labels["app"])
	require.NotNil(t, secret.Immutable)
	assert.True(t, *secret.Immutable)
	assert.Equal(t, []string{constants.FinalizerName}, secret.Finalizers)
	require.Len(t, secret.OwnerReferences, 1)
	assert.Equal(t, v1.SecretTemplateKind, secret.OwnerReferences[0].Kind)
}

func TestSecretTemplateReconciler_ExistingSecretIsSuccess(t *testing.T) {
	tmpl := makeSecretTemplate("db", "team-a", map[string]v1.DataTemplate{
		"password": {Generate: &v1.GenerateSpec{Length: 16, Letters: ptr(true)}},
	})
	existing := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Name: "db", Namespace: "team-a"},
		Data:       map[string][]byte{"password": []byte("keep-me")},
	}

	st, c := newFakeStore(t, tmpl, existing)
	r := &SecretTemplateReconciler{Store: st}

	_, err := r.Reconcile(context.Background(), secretRequest("team-a", "db"))
	require.NoError(t, err)

	// Running again must not rotate the value either.
	_, err = r.Reconcile(context.Background(), secretRequest("team-a", "db"))
	require.NoError(t, err)

	secret := &corev1.Secret{}
	require.NoError(t, c.Get(context.Background(), client.ObjectKey{Namespace: "team-a", Name: "db"}, secret))
	assert.Equal(t, []byte("keep-me"), secret.Data["password"])
}

func TestSecretTemplateReconciler_MissingReferenceCreatesNothing(t *testing.T) {
	tmpl := makeSecretTemplate("db", "team-a", map[string]v1.DataTemplate{
		"username": {Plain: ptr("admin")},
		"token":    {SecretRef: &corev1.SecretKeySelector{LocalObjectReference: corev1.LocalObjectReference{Name: "missing"}, Key: "token"}},
	})

	st, c := newFakeStore(t, tmpl)
	r := &SecretTemplateReconciler{Store: st}

	_, err := r.Reconcile(context.Background(), secretRequest("team-a", "db"))
	require.Error(t, err)
	assert.True(t, operrors.IsKind(err, operrors.KindReference), "got %v", err)

	secrets := &corev1.SecretList{}
	require.NoError(t, c.List(context.Background(), secrets, client.InNamespace("team-a")))
	assert.Empty(t, secrets.Items)
}

func TestSecretTemplateReconciler_MissingKeyIsReferenceError(t *testing.T) {
	upstream := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Name: "upstream", Namespace: "team-a"},
		Data:       map[string][]byte{"other": []byte("x")},
	}
	tmpl := makeSecretTemplate("db", "team-a", map[string]v1.DataTemplate{
		"token": {SecretRef: &corev1.SecretKeySelector{LocalObjectReference: corev1.LocalObjectReference{Name: "upstream"}, Key: "token"}},
	})

	st, c := newFakeStore(t, upstream, tmpl)
	r := &SecretTemplateReconciler{Store: st}

	_, err := r.Reconcile(context.Background(), secretRequest("team-a", "db"))
	require.Error(t, err)
	assert.True(t, operrors.IsKind(err, operrors.KindReference))
	assert.ErrorIs(t, err, operrors.ErrSecretKeyNotFound)

	err = c.Get(context.Background(), client.ObjectKey{Namespace: "team-a", Name: "db"}, &corev1.Secret{})
	assert.True(t, apierrors.IsNotFound(err))
}

func TestSecretTemplateReconciler_TemplateGone(t *testing.T) {
	st, _ := newFakeStore(t)
	r := &SecretTemplateReconciler{Store: st}

	_, err := r.Reconcile(context.Background(), secretRequest("team-a", "db"))
	assert.NoError(t, err)
}

func TestSecretTemplateReconciler_DryRun(t *testing.T) {
	tmpl := makeSecretTemplate("db", "team-a", map[string]v1.DataTemplate{
		"username": {Plain: ptr("admin")},
	})

	st, c := newFakeStore(t, tmpl)
	r := &SecretTemplateReconciler{Store: st, DryRun: true}

	_, err := r.Reconcile(context.Background(), secretRequest("team-a", "db"))
	require.NoError(t, err)

	err = c.Get(context.Background(), client.ObjectKey{Namespace: "team-a", Name: "db"}, &corev1.Secret{})
	assert.True(t, apierrors.IsNotFound(err))
}
