package template

import (
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"

	v1 "github.com/lukaszraczylo/kubesecrets/api/v1"
	"github.com/lukaszraczylo/kubesecrets/pkg/operrors"
)

// OwnerKind is a kind that may own a generated Secret.
type OwnerKind int

const (
	// OwnerSecretTemplate is a crd.withlazers.dev/v1 SecretTemplate.
	OwnerSecretTemplate OwnerKind = iota + 1
)

// knownOwners is the closed set of owner kinds a generated Secret can point to.
var knownOwners = map[schema.GroupVersionKind]OwnerKind{
	v1.GroupVersion.WithKind(v1.SecretTemplateKind): OwnerSecretTemplate,
}

// Owner identifies the object a generated Secret belongs to.
type Owner struct {
	Key  types.NamespacedName
	UID  types.UID
	Kind OwnerKind
}

// ResolveOwner finds the single owner reference of obj pointing at a known
// template kind. Owner references live in the owned object's namespace.
func ResolveOwner(obj metav1.Object) (Owner, error) {
	var (
		found Owner
		count int
	)

	for _, ref := range obj.GetOwnerReferences() {
		gv, err := schema.ParseGroupVersion(ref.APIVersion)
		if err != nil {
			continue
		}
		kind, ok := knownOwners[gv.WithKind(ref.Kind)]
		if !ok {
			continue
		}
		count++
		found = Owner{
			Kind: kind,
			Key:  types.NamespacedName{Namespace: obj.GetNamespace(), Name: ref.Name},
			UID:  ref.UID,
		}
	}

	switch count {
	case 0:
		return Owner{}, operrors.Reference("resolve owner",
			fmt.Errorf("%s/%s: %w", obj.GetNamespace(), obj.GetName(), operrors.ErrNoOwnerReference))
	case 1:
		return found, nil
	default:
		return Owner{}, operrors.Reference("resolve owner",
			fmt.Errorf("%s/%s: %w", obj.GetNamespace(), obj.GetName(), operrors.ErrAmbiguousOwnerReference))
	}
}
