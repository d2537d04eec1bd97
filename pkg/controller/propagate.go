// Package controller implements the kubesecrets reconciliation logic.
package controller

import (
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/lukaszraczylo/kubesecrets/pkg/constants"
)

// BuildPropagatedSecret creates the copy of source written to targetNamespace.
// Operator-owned keys are stripped from labels and annotations and the copy is
// marked with the namespace it was cloned from.
func BuildPropagatedSecret(source *corev1.Secret, targetNamespace string) *corev1.Secret {
	annotations := filterOperatorMetadata(source.Annotations)
	annotations[constants.AnnotationClonedFrom] = source.Namespace

	labels := filterOperatorMetadata(source.Labels)
	if len(labels) == 0 {
		labels = nil
	}

	target := &corev1.Secret{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "v1",
			Kind:       "Secret",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:        source.Name,
			Namespace:   targetNamespace,
			Labels:      labels,
			Annotations: annotations,
		},
		Type: source.Type,
		Data: copyData(source.Data),
		// StringData is write-only and already folded into Data by the API server.
	}

	if source.Immutable != nil {
		immutable := *source.Immutable
		target.Immutable = &immutable
	}

	return target
}

// filterOperatorMetadata removes all keys under the reserved prefix.
// The result is never nil.
func filterOperatorMetadata(metadata map[string]string) map[string]string {
	filtered := make(map[string]string, len(metadata))
	for k, v := range metadata {
		if !strings.HasPrefix(k, constants.Prefix) {
			filtered[k] = v
		}
	}
	return filtered
}

func copyData(data map[string][]byte) map[string][]byte {
	if data == nil {
		return nil
	}
	out := make(map[string][]byte, len(data))
	for k, v := range data {
		out[k] = append([]byte(nil), v...)
	}
	return out
}
