// Package controller implements the kubesecrets reconciliation logic.
package controller

import (
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/lukaszraczylo/kubesecrets/pkg/constants"
	"github.com/lukaszraczylo/kubesecrets/pkg/filter"
)

// CanHandle reports whether a label or annotation map opts its object into
// propagation. A nil map, a missing enabled key or the presence of the
// cloned-from marker all disqualify the object.
func CanHandle(fields map[string]string) bool {
	if fields == nil {
		return false
	}
	if _, ok := fields[constants.LabelEnabled]; !ok {
		return false
	}
	if _, ok := fields[constants.AnnotationClonedFrom]; ok {
		return false
	}
	return true
}

// Eligible reports whether obj takes part in propagation, either as a source
// secret or as a target namespace. The enabled marker is read from labels and
// the cloned-from marker from annotations.
func Eligible(obj metav1.Object) bool {
	return CanHandle(obj.GetLabels()) && !IsPropagatedCopy(obj)
}

// IsPropagatedCopy reports whether obj was written by the propagation engine.
func IsPropagatedCopy(obj metav1.Object) bool {
	_, ok := obj.GetAnnotations()[constants.AnnotationClonedFrom]
	return ok
}

// GetGlobbers compiles the allow and deny namespace globs from annotations.
// A nil list means the annotation is absent. Any invalid pattern fails the
// whole call.
func GetGlobbers(annotations map[string]string) (allow, deny *filter.GlobList, err error) {
	if value, ok := annotations[constants.AnnotationNamespaces]; ok {
		allow, err = filter.NewGlobList(value)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to compile allow list: %w", err)
		}
	}

	if value, ok := annotations[constants.AnnotationNamespacesDeny]; ok {
		deny, err = filter.NewGlobList(value)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to compile deny list: %w", err)
		}
	}

	return allow, deny, nil
}
