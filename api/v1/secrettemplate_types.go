package v1

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// SecretTemplateKind is the kind name of SecretTemplate objects.
const SecretTemplateKind = "SecretTemplate"

// SecretTemplateSpec describes the Secret generated from a SecretTemplate.
// The generated Secret has the same namespace and name as the template.
type SecretTemplateSpec struct {
	// Labels are copied verbatim to the generated Secret.
	// +optional
	Labels map[string]string `json:"labels,omitempty"`

	// Annotations are copied verbatim to the generated Secret.
	// +optional
	Annotations map[string]string `json:"annotations,omitempty"`

	// Data maps each key of the generated Secret to the source of its value.
	Data map[string]DataTemplate `json:"data"`

	// Type is the type of the generated Secret.
	// +optional
	Type *corev1.SecretType `json:"type_,omitempty"`
}

// DataTemplate is the source of a single data entry. Exactly one field must be set.
//
//	data:
//	  password:
//	    generate:
//	      length: 24
//	      must_digits: true
//	  username:
//	    plain: admin
//
// +kubebuilder:validation:MinProperties=1
// +kubebuilder:validation:MaxProperties=1
type DataTemplate struct {
	// SecretRef copies the value of a key of another Secret in the template's namespace.
	// +optional
	SecretRef *corev1.SecretKeySelector `json:"secret_ref,omitempty"`

	// Base64 is decoded and stored as raw bytes.
	// +optional
	Base64 *string `json:"base64,omitempty"`

	// Plain is stored as its UTF-8 bytes.
	// +optional
	Plain *string `json:"plain,omitempty"`

	// Generate produces a new random string each time the Secret is created.
	// +optional
	Generate *GenerateSpec `json:"generate,omitempty"`
}

// GenerateSpec configures the random string generator.
//
// A plain class flag allows characters of that class in the output. The matching
// must_ flag additionally requires at least one character of that class.
type GenerateSpec struct {
	// Length is the exact number of characters generated.
	// +kubebuilder:validation:Minimum=0
	Length int `json:"length"`

	// CustomAlphabet is an extra character class.
	// +optional
	CustomAlphabet *string `json:"custom_alphabet,omitempty"`

	// +optional
	Letters *bool `json:"letters,omitempty"`
	// +optional
	Digits *bool `json:"digits,omitempty"`
	// +optional
	Symbols *bool `json:"symbols,omitempty"`
	// +optional
	Uppercase *bool `json:"uppercase,omitempty"`
	// +optional
	Lowercase *bool `json:"lowercase,omitempty"`

	// +optional
	MustLetters *bool `json:"must_letters,omitempty"`
	// +optional
	MustDigits *bool `json:"must_digits,omitempty"`
	// +optional
	MustSymbols *bool `json:"must_symbols,omitempty"`
	// +optional
	MustCustomAlphabet *bool `json:"must_custom_alphabet,omitempty"`
	// +optional
	MustUppercase *bool `json:"must_uppercase,omitempty"`
	// +optional
	MustLowercase *bool `json:"must_lowercase,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:resource:shortName=st

// SecretTemplate is the Schema for the secrettemplates API.
type SecretTemplate struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec SecretTemplateSpec `json:"spec"`
}

// +kubebuilder:object:root=true

// SecretTemplateList contains a list of SecretTemplate.
type SecretTemplateList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []SecretTemplate `json:"items"`
}

func init() {
	SchemeBuilder.Register(&SecretTemplate{}, &SecretTemplateList{})
}
