// Package template renders SecretTemplates into Secrets.
package template

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sort"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	v1 "github.com/lukaszraczylo/kubesecrets/api/v1"
	"github.com/lukaszraczylo/kubesecrets/pkg/constants"
	"github.com/lukaszraczylo/kubesecrets/pkg/generator"
	"github.com/lukaszraczylo/kubesecrets/pkg/operrors"
)

var errMalformedEntry = errors.New("data template must set exactly one of secret_ref, base64, plain, generate")

// SecretGetter looks up secrets referenced by templates.
type SecretGetter interface {
	GetSecret(ctx context.Context, namespace, name string) (*corev1.Secret, error)
}

// GenerateFunc produces a value for a generate entry.
type GenerateFunc func(spec v1.GenerateSpec) ([]byte, error)

// Renderer evaluates the data entries of SecretTemplates.
type Renderer struct {
	Secrets  SecretGetter
	Generate GenerateFunc
}

// NewRenderer creates a Renderer using the default random generator.
func NewRenderer(secrets SecretGetter) *Renderer {
	return &Renderer{
		Secrets:  secrets,
		Generate: generator.Generate,
	}
}

// RenderData resolves every data entry of tmpl to raw bytes.
// Any failing entry aborts the render and no partial data is returned.
func (r *Renderer) RenderData(ctx context.Context, tmpl *v1.SecretTemplate) (map[string][]byte, error) {
	keys := make([]string, 0, len(tmpl.Spec.Data))
	for k := range tmpl.Spec.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	data := make(map[string][]byte, len(keys))
	for _, key := range keys {
		value, err := r.renderEntry(ctx, tmpl.Namespace, tmpl.Spec.Data[key])
		if err != nil {
			return nil, fmt.Errorf("failed to render key %q: %w", key, err)
		}
		data[key] = value
	}

	return data, nil
}

func (r *Renderer) renderEntry(ctx context.Context, namespace string, entry v1.DataTemplate) ([]byte, error) {
	if countSources(entry) != 1 {
		return nil, operrors.New(operrors.KindEncoding, "validate entry", errMalformedEntry)
	}

	switch {
	case entry.SecretRef != nil:
		return r.loadSecretKey(ctx, namespace, entry.SecretRef)
	case entry.Base64 != nil:
		value, err := base64.StdEncoding.DecodeString(*entry.Base64)
		if err != nil {
			return nil, operrors.New(operrors.KindEncoding, "decode base64", err)
		}
		return value, nil
	case entry.Plain != nil:
		return []byte(*entry.Plain), nil
	default:
		gen := r.Generate
		if gen == nil {
			gen = generator.Generate
		}
		return gen(*entry.Generate)
	}
}

// loadSecretKey returns the raw value of ref.Key in the referenced secret.
func (r *Renderer) loadSecretKey(ctx context.Context, namespace string, ref *corev1.SecretKeySelector) ([]byte, error) {
	if ref.Name == "" {
		return nil, operrors.Reference("secret_ref", operrors.ErrSecretKeySelectorHasNoName)
	}

	secret, err := r.Secrets.GetSecret(ctx, namespace, ref.Name)
	if err != nil {
		if apierrors.IsNotFound(err) {
			return nil, operrors.Reference("secret_ref", err)
		}
		return nil, operrors.Store(fmt.Sprintf("get secret %s/%s", namespace, ref.Name), err)
	}

	if secret.Data == nil {
		return nil, operrors.Reference("secret_ref", fmt.Errorf("%s/%s: %w", namespace, ref.Name, operrors.ErrSecretHasNoData))
	}

	value, ok := secret.Data[ref.Key]
	if !ok {
		return nil, operrors.Reference("secret_ref", fmt.Errorf("%s/%s key %q: %w", namespace, ref.Name, ref.Key, operrors.ErrSecretKeyNotFound))
	}

	return value, nil
}

// Render resolves tmpl and builds the Secret it generates.
func (r *Renderer) Render(ctx context.Context, tmpl *v1.SecretTemplate) (*corev1.Secret, error) {
	data, err := r.RenderData(ctx, tmpl)
	if err != nil {
		return nil, err
	}
	return BuildSecret(tmpl, data), nil
}

// BuildSecret assembles the generated Secret for tmpl. The Secret is immutable,
// controlled by the template and guarded by the regeneration finalizer.
func BuildSecret(tmpl *v1.SecretTemplate, data map[string][]byte) *corev1.Secret {
	immutable := true

	secret := &corev1.Secret{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "v1",
			Kind:       "Secret",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:        tmpl.Name,
			Namespace:   tmpl.Namespace,
			Labels:      copyMap(tmpl.Spec.Labels),
			Annotations: copyMap(tmpl.Spec.Annotations),
			OwnerReferences: []metav1.OwnerReference{
				*metav1.NewControllerRef(tmpl, v1.GroupVersion.WithKind(v1.SecretTemplateKind)),
			},
			Finalizers: []string{constants.FinalizerName},
		},
		Data:      data,
		Immutable: &immutable,
	}

	if tmpl.Spec.Type != nil {
		secret.Type = *tmpl.Spec.Type
	}

	return secret
}

func countSources(entry v1.DataTemplate) int {
	n := 0
	if entry.SecretRef != nil {
		n++
	}
	if entry.Base64 != nil {
		n++
	}
	if entry.Plain != nil {
		n++
	}
	if entry.Generate != nil {
		n++
	}
	return n
}

func copyMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
