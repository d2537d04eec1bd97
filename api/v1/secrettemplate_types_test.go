package v1

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/yaml"
)

const manifest = `
apiVersion: crd.withlazers.dev/v1
kind: SecretTemplate
metadata:
  name: db
  namespace: team-a
spec:
  labels:
    app: db
  annotations:
    owner: team-a
  type_: kubernetes.io/basic-auth
  data:
    username:
      plain: admin
    ca:
      base64: aGVsbG8=
    upstream:
      secret_ref:
        name: upstream-creds
        key: token
    password:
      generate:
        length: 12
        must_digits: true
        must_letters: true
        custom_alphabet: "-_"
`

func TestSecretTemplate_DecodeManifest(t *testing.T) {
	var st SecretTemplate
	require.NoError(t, yaml.UnmarshalStrict([]byte(manifest), &st))

	assert.Equal(t, "db", st.Name)
	assert.Equal(t, "team-a", st.Namespace)
	assert.Equal(t, map[string]string{"app": "db"}, st.Spec.Labels)
	assert.Equal(t, map[string]string{"owner": "team-a"}, st.Spec.Annotations)
	require.NotNil(t, st.Spec.Type)
	assert.Equal(t, corev1.SecretTypeBasicAuth, *st.Spec.Type)

	require.Len(t, st.Spec.Data, 4)
	assert.Equal(t, "admin", *st.Spec.Data["username"].Plain)
	assert.Equal(t, "aGVsbG8=", *st.Spec.Data["ca"].Base64)
	assert.Equal(t, "upstream-creds", st.Spec.Data["upstream"].SecretRef.Name)
	assert.Equal(t, "token", st.Spec.Data["upstream"].SecretRef.Key)

	gen := st.Spec.Data["password"].Generate
	require.NotNil(t, gen)
	assert.Equal(t, 12, gen.Length)
	assert.True(t, *gen.MustDigits)
	assert.True(t, *gen.MustLetters)
	assert.Equal(t, "-_", *gen.CustomAlphabet)
	assert.Nil(t, gen.Digits)
}

func TestSecretTemplate_FieldNamesRoundTrip(t *testing.T) {
	var st SecretTemplate
	require.NoError(t, yaml.Unmarshal([]byte(manifest), &st))

	raw, err := json.Marshal(st.Spec)
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Contains(t, fields, "type_")
	assert.Contains(t, fields, "data")
	assert.Contains(t, fields, "labels")
	assert.Contains(t, fields, "annotations")
	assert.Contains(t, string(fields["data"]), `"secret_ref"`)
	assert.Contains(t, string(fields["data"]), `"must_digits":true`)
}

func TestSecretTemplate_DeepCopyIsIndependent(t *testing.T) {
	var st SecretTemplate
	require.NoError(t, yaml.Unmarshal([]byte(manifest), &st))

	cp := st.DeepCopy()
	*cp.Spec.Data["username"].Plain = "root"
	*cp.Spec.Data["password"].Generate.MustDigits = false
	cp.Spec.Labels["app"] = "other"

	assert.Equal(t, "admin", *st.Spec.Data["username"].Plain)
	assert.True(t, *st.Spec.Data["password"].Generate.MustDigits)
	assert.Equal(t, "db", st.Spec.Labels["app"])
}
