package logger_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/possuite/backoffice/internal/logger"
)

func TestInitValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     logger.Log
		wantErr error
	}{
		{
			name:    "missing service name",
			cfg:     logger.Log{LogLevel: "info", AppName: "backoffice"},
			wantErr: logger.ErrServiceNameIsEmpty,
		},
		{
			name:    "missing app name",
			cfg:     logger.Log{LogLevel: "info", ServiceName: "rbac"},
			wantErr: logger.ErrAppNameIsEmpty,
		},
		{
			name: "no output",
			cfg:  logger.Log{LogLevel: "warn", AppName: "backoffice", ServiceName: "rbac"},
		},
		{
			name: "trace with caller",
			cfg:  logger.Log{LogLevel: "trace", AppName: "backoffice", ServiceName: "rbac", ReportCaller: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := logger.Init(tt.cfg)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestInitUnknownLevel(t *testing.T) {
	err := logger.Init(logger.Log{LogLevel: "loud", AppName: "a", ServiceName: "s"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loglevel loud is not supported")
}

func TestInitFile(t *testing.T) {
	dir := t.TempDir()

	err := logger.Init(logger.Log{
		LogLevel:    "info",
		AppName:     "backoffice",
		ServiceName: "rbac",
		File: logger.LogFile{
			Enabled:  true,
			Path:     dir + "/logs",
			InfoLog:  "info.log",
			ErrorLog: "error.log",
			TraceLog: "trace.log",
			WarnLog:  "warn.log",
		},
	})
	require.NoError(t, err)
	assert.DirExists(t, dir+"/logs")
}

func TestLevelWriter(t *testing.T) {
	var errBuf, infoBuf, traceBuf, warnBuf bytes.Buffer

	lw := &logger.LevelWriter{
		ErrorWriter: &errBuf,
		InfoWriter:  &infoBuf,
		TraceWriter: &traceBuf,
		WarnWriter:  &warnBuf,
	}

	tests := []struct {
		level zerolog.Level
		want  *bytes.Buffer
	}{
		{zerolog.TraceLevel, &traceBuf},
		{zerolog.DebugLevel, &infoBuf},
		{zerolog.InfoLevel, &infoBuf},
		{zerolog.WarnLevel, &warnBuf},
		{zerolog.ErrorLevel, &errBuf},
		{zerolog.FatalLevel, &errBuf},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			errBuf.Reset()
			infoBuf.Reset()
			traceBuf.Reset()
			warnBuf.Reset()

			n, err := lw.WriteLevel(tt.level, []byte("msg"))
			require.NoError(t, err)
			assert.Equal(t, 3, n)
			assert.Equal(t, "msg", tt.want.String())
			assert.Equal(t, 3, errBuf.Len()+infoBuf.Len()+traceBuf.Len()+warnBuf.Len())
		})
	}

	n, err := lw.WriteLevel(zerolog.Disabled, []byte("msg"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLevelWriterNilTarget(t *testing.T) {
	lw := &logger.LevelWriter{}

	n, err := lw.WriteLevel(zerolog.ErrorLevel, []byte("dropped"))
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestLogFilePolicies(t *testing.T) {
	f := logger.LogFile{
		AccessLog: "access.log", AccessMaxSize: 10, AccessMaxBackups: 2, AccessMaxAge: 7,
		ErrorLog: "error.log",
	}

	assert.Equal(t, logger.RollingFile{Name: "access.log", MaxSize: 10, MaxBackups: 2, MaxAge: 7}, f.Access())
	assert.Equal(t, "error.log", f.Error().Name)
}
