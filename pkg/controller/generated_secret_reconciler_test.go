package controller

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	v1 "github.com/lukaszraczylo/kubesecrets/api/v1"
	"github.com/lukaszraczylo/kubesecrets/pkg/constants"
	"github.com/lukaszraczylo/kubesecrets/pkg/operrors"
	"github.com/lukaszraczylo/kubesecrets/pkg/template"
)

func TestGeneratedSecretReconciler_DeletionRegenerates(t *testing.T) {
	ctx := context.Background()
	tmpl := makeSecretTemplate("db", "team-a", map[string]v1.DataTemplate{
		"password": {Generate: &v1.GenerateSpec{Length: 12, MustDigits: ptr(true), MustLetters: ptr(true)}},
	})

	st, c := newFakeStore(t, tmpl)
	templates := &SecretTemplateReconciler{Store: st}
	generated := &GeneratedSecretReconciler{Store: st}

	_, err := templates.Reconcile(ctx, secretRequest("team-a", "db"))
	require.NoError(t, err)

	original := &corev1.Secret{}
	require.NoError(t, c.Get(ctx, client.ObjectKey{Namespace: "team-a", Name: "db"}, original))
	originalPassword := string(original.Data["password"])
	require.Len(t, originalPassword, 12)

	// Active: a change event without deletion does nothing
	_, err = generated.Reconcile(ctx, secretRequest("team-a", "db"))
	require.NoError(t, err)

	// DeletionRequested: the finalizer holds the secret
	require.NoError(t, c.Delete(ctx, original))
	pending := &corev1.Secret{}
	require.NoError(t, c.Get(ctx, client.ObjectKey{Namespace: "team-a", Name: "db"}, pending))
	require.NotNil(t, pending.DeletionTimestamp)

	// FinalizerStripped then Regenerated
	_, err = generated.Reconcile(ctx, secretRequest("team-a", "db"))
	require.NoError(t, err)

	regenerated := &corev1.Secret{}
	require.NoError(t, c.Get(ctx, client.ObjectKey{Namespace: "team-a", Name: "db"}, regenerated))
	assert.Nil(t, regenerated.DeletionTimestamp)
	assert.Equal(t, []string{constants.FinalizerName}, regenerated.Finalizers)
	require.NotNil(t, regenerated.Immutable)
	assert.True(t, *regenerated.Immutable)
	assert.Len(t, regenerated.Data["password"], 12)
	assert.NotEqual(t, originalPassword, string(regenerated.Data["password"]))
}

func TestGeneratedSecretReconciler_OwnerGoneSkipsRegeneration(t *testing.T) {
	ctx := context.Background()
	tmpl := makeSecretTemplate("db", "team-a", map[string]v1.DataTemplate{
		"username": {Plain: ptr("admin")},
	})

	st, c := newFakeStore(t, tmpl)
	_, err := (&SecretTemplateReconciler{Store: st}).Reconcile(ctx, secretRequest("team-a", "db"))
	require.NoError(t, err)

	// Cascade: the template goes first, then its secret.
	require.NoError(t, c.Delete(ctx, tmpl))
	secret := &corev1.Secret{}
	require.NoError(t, c.Get(ctx, client.ObjectKey{Namespace: "team-a", Name: "db"}, secret))
	require.NoError(t, c.Delete(ctx, secret))

	_, err = (&GeneratedSecretReconciler{Store: st}).Reconcile(ctx, secretRequest("team-a", "db"))
	require.NoError(t, err)

	secrets := &corev1.SecretList{}
	require.NoError(t, c.List(ctx, secrets, client.InNamespace("team-a")))
	assert.Empty(t, secrets.Items)
}

func deletingSecret(finalizers []string, owners ...metav1.OwnerReference) *corev1.Secret {
	now := metav1.Now()
	return &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:              "db",
			Namespace:         "team-a",
			DeletionTimestamp: &now,
			Finalizers:        finalizers,
			OwnerReferences:   owners,
		},
	}
}

func templateOwnerRef() metav1.OwnerReference {
	return metav1.OwnerReference{
		APIVersion: v1.GroupVersion.String(),
		Kind:       v1.SecretTemplateKind,
		Name:       "db",
		UID:        "template-uid",
		Controller: ptr(true),
	}
}

func TestGeneratedSecretReconciler_NoAction(t *testing.T) {
	active := deletingSecret([]string{constants.FinalizerName}, templateOwnerRef())
	active.DeletionTimestamp = nil

	tests := []struct {
		getErr error
		secret *corev1.Secret
		name   string
	}{
		{name: "secret gone", getErr: notFound("secrets", "db")},
		{name: "no deletion requested", secret: active},
		{
			name:   "foreign finalizer alongside ours",
			secret: deletingSecret([]string{constants.FinalizerName, "example.com/backup"}, templateOwnerRef()),
		},
		{
			name:   "only a foreign finalizer",
			secret: deletingSecret([]string{"example.com/backup"}, templateOwnerRef()),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := new(MockStore)
			st.On("GetSecret", mock.Anything, "team-a", "db").Return(tt.secret, tt.getErr)

			r := &GeneratedSecretReconciler{Store: st}
			_, err := r.Reconcile(context.Background(), secretRequest("team-a", "db"))

			require.NoError(t, err)
			st.AssertNotCalled(t, "RemoveFinalizer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			st.AssertNotCalled(t, "CreateSecret", mock.Anything, mock.Anything)
		})
	}
}

func TestGeneratedSecretReconciler_RemoveFinalizerFails(t *testing.T) {
	st := new(MockStore)
	st.On("GetSecret", mock.Anything, "team-a", "db").
		Return(deletingSecret([]string{constants.FinalizerName}, templateOwnerRef()), nil)
	st.On("RemoveFinalizer", mock.Anything, "team-a", "db", constants.FinalizerName).
		Return(errors.New("the server rejected our request due to an error in our request"))

	r := &GeneratedSecretReconciler{Store: st}
	_, err := r.Reconcile(context.Background(), secretRequest("team-a", "db"))

	require.Error(t, err)
	assert.True(t, operrors.IsKind(err, operrors.KindStore))
	st.AssertNotCalled(t, "GetSecretTemplate", mock.Anything, mock.Anything, mock.Anything)
}

func TestGeneratedSecretReconciler_OwnerReferenceErrors(t *testing.T) {
	tests := []struct {
		wantIs error
		name   string
		owners []metav1.OwnerReference
	}{
		{name: "no owner", wantIs: operrors.ErrNoOwnerReference},
		{
			name:   "unrelated owner",
			owners: []metav1.OwnerReference{{APIVersion: "apps/v1", Kind: "Deployment", Name: "web"}},
			wantIs: operrors.ErrNoOwnerReference,
		},
		{
			name:   "two template owners",
			owners: []metav1.OwnerReference{templateOwnerRef(), templateOwnerRef()},
			wantIs: operrors.ErrAmbiguousOwnerReference,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := new(MockStore)
			st.On("GetSecret", mock.Anything, "team-a", "db").
				Return(deletingSecret([]string{constants.FinalizerName}, tt.owners...), nil)
			st.On("RemoveFinalizer", mock.Anything, "team-a", "db", constants.FinalizerName).Return(nil)

			r := &GeneratedSecretReconciler{Store: st}
			_, err := r.Reconcile(context.Background(), secretRequest("team-a", "db"))

			require.Error(t, err)
			assert.True(t, operrors.IsKind(err, operrors.KindReference))
			assert.ErrorIs(t, err, tt.wantIs)
			st.AssertNotCalled(t, "CreateSecret", mock.Anything, mock.Anything)
		})
	}
}

func TestGeneratedSecretReconciler_RegenerationUsesRenderer(t *testing.T) {
	tmpl := makeSecretTemplate("db", "team-a", map[string]v1.DataTemplate{
		"password": {Generate: &v1.GenerateSpec{Length: 8, Digits: ptr(true)}},
	})

	st := new(MockStore)
	st.On("GetSecret", mock.Anything, "team-a", "db").
		Return(deletingSecret([]string{constants.FinalizerName}, templateOwnerRef()), nil)
	st.On("RemoveFinalizer", mock.Anything, "team-a", "db", constants.FinalizerName).Return(nil)
	st.On("GetSecretTemplate", mock.Anything, "team-a", "db").Return(tmpl, nil)
	st.On("CreateSecret", mock.Anything, mock.MatchedBy(func(s *corev1.Secret) bool {
		return s.Name == "db" && string(s.Data["password"]) == "fixed"
	})).Return(true, nil)

	renderer := &template.Renderer{
		Secrets:  st,
		Generate: func(v1.GenerateSpec) ([]byte, error) { return []byte("fixed"), nil },
	}

	r := &GeneratedSecretReconciler{Store: st, Renderer: renderer}
	_, err := r.Reconcile(context.Background(), secretRequest("team-a", "db"))

	require.NoError(t, err)
	st.AssertExpectations(t)
}

func TestGeneratedSecretReconciler_DryRun(t *testing.T) {
	st := new(MockStore)
	st.On("GetSecret", mock.Anything, "team-a", "db").
		Return(deletingSecret([]string{constants.FinalizerName}, templateOwnerRef()), nil)

	r := &GeneratedSecretReconciler{Store: st, DryRun: true}
	_, err := r.Reconcile(context.Background(), secretRequest("team-a", "db"))

	require.NoError(t, err)
	st.AssertNotCalled(t, "RemoveFinalizer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
