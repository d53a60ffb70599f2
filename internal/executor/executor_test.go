package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"host_machine", KindHost, false},
		{"HOST_MACHINE", KindHost, false},
		{"docker_container", KindContainer, false},
		{"container_environment", KindContainer, false},
		{" docker_container ", KindContainer, false},
		{"kubernetes", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnsupportedKind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewUnsupportedKind(t *testing.T) {
	ex, err := New(context.Background(), Kind("vm"), Options{})
	require.ErrorIs(t, err, ErrUnsupportedKind)
	assert.Nil(t, ex)
}

func TestNewHost(t *testing.T) {
	ex, err := New(context.Background(), KindHost, Options{})
	require.NoError(t, err)
	assert.Equal(t, KindHost, ex.Kind())
}

func TestNewContainerRequiresName(t *testing.T) {
	ex, err := New(context.Background(), KindContainer, Options{Docker: &MockAPI{}})
	require.Error(t, err)
	assert.Nil(t, ex)
}

func TestCommandString(t *testing.T) {
	cmd := Command{Name: "python3", Args: []string{"run.py", "-m", "/models/my model.xml", "--flag", ""}}
	assert.Equal(t, `python3 run.py -m "/models/my model.xml" --flag ""`, cmd.String())
	assert.Equal(t, []string{"python3", "run.py", "-m", "/models/my model.xml", "--flag", ""}, cmd.Argv())
}
