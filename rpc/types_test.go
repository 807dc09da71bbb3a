package rpc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProofsJSON(t *testing.T) {
	p := Proofs{
		StateProof: []byte{},
		EvmProof:   []byte{0xca, 0xfe},
		Duration:   1234,
	}
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"state_proof":"0x","evm_proof":"0xcafe","duration":1234}`, string(raw))
}

func TestRequestJSON(t *testing.T) {
	raw := []byte(`{"id":1,"method":"proof","params":[{"k":19}]}`)
	var req Request
	require.NoError(t, json.Unmarshal(raw, &req))
	assert.Equal(t, "proof", req.Method)
	assert.Equal(t, json.RawMessage("1"), req.ID)

	var opts []ProofRequestOptions
	require.NoError(t, json.Unmarshal(req.Params, &opts))
	require.Len(t, opts, 1)
	require.NotNil(t, opts[0].K)
	assert.Equal(t, uint32(19), *opts[0].K)
}

func TestProofRequestOptionsOmitsUnsetK(t *testing.T) {
	raw, err := json.Marshal(ProofRequestOptions{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))
}

func TestResponseEnvelopes(t *testing.T) {
	ok := NewResponse(json.RawMessage(`"abc"`), Proofs{StateProof: []byte{}, EvmProof: []byte{1}})
	raw, err := json.Marshal(ok)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"jsonrpc":"2.0"`)
	assert.Contains(t, string(raw), `"id":"abc"`)

	bad := NewResponseError(json.RawMessage(`2`), -32001, "capacity exceeded")
	raw, err = json.Marshal(bad)
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":2,"error":{"code":-32001,"message":"capacity exceeded"}}`, string(raw))
}
