package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/learnmesh"
	"github.com/hupe1980/learnmesh/artifact"
	"github.com/hupe1980/learnmesh/config"
	"github.com/hupe1980/learnmesh/imagegen"
	"github.com/hupe1980/learnmesh/retry"
	"github.com/hupe1980/learnmesh/session"
)

type staticBackend struct{}

func (staticBackend) Name() string { return "imagen" }

func (staticBackend) Generate(context.Context, string) (*imagegen.Payload, error) {
	return &imagegen.Payload{Data: []byte("png"), MimeType: "image/png"}, nil
}

// useMemoryMesh makes every command share one set of in-memory stores.
func useMemoryMesh(t *testing.T) {
	t.Helper()
	sessions := session.NewInMemoryStore()
	artifacts := artifact.NewInMemoryStore()

	orig := openMesh
	openMesh = func(context.Context, *rootOptions) (*learnmesh.Mesh, *config.Config, error) {
		m, err := learnmesh.New(func(o *learnmesh.Options) {
			o.SessionStore = sessions
			o.ArtifactStore = artifacts
			o.Primary = staticBackend{}
			o.RetryPolicy = retry.Policy{Attempts: 1}
		})
		return m, config.New(), err
	}
	t.Cleanup(func() { openMesh = orig })
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestScoreCmd(t *testing.T) {
	useMemoryMesh(t)

	out, err := run(t, "score", "--session", "s1", "80", "90", "70")
	require.NoError(t, err)

	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, float64(80), res["overall_percentage"])
	assert.Equal(t, float64(3), res["count"])

	out, err = run(t, "score", "--session", "s1", "--out-of", "20", "20")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, float64(85), res["overall_percentage"])
}

func TestScoreCmd_Invalid(t *testing.T) {
	useMemoryMesh(t)

	_, err := run(t, "score", "--session", "s1", "abc")
	assert.ErrorContains(t, err, `invalid score "abc"`)

	_, err = run(t, "score", "--session", "s1", "--out-of", "10", "11")
	assert.Error(t, err)

	_, err = run(t, "score", "80")
	assert.ErrorContains(t, err, "session")
}

func TestIllustrateAndArtifactsCmd(t *testing.T) {
	useMemoryMesh(t)

	out, err := run(t, "illustrate", "--session", "s1", "plant", "cell")
	require.NoError(t, err)
	var res imagegen.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "plant_cell_image.png", res.ArtifactName)
	assert.Equal(t, 1, res.Version)

	_, err = run(t, "illustrate", "--session", "s1", "plant", "cell")
	require.NoError(t, err)

	out, err = run(t, "artifacts", "list", "--session", "s1")
	require.NoError(t, err)
	assert.JSONEq(t, `["plant_cell_image.png"]`, out)

	out, err = run(t, "artifacts", "versions", "--session", "s1", "plant_cell_image.png")
	require.NoError(t, err)
	assert.JSONEq(t, `[1, 2]`, out)
}
