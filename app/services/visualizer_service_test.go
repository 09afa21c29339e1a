package services

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/furnivision/app/models"
	"github.com/shashiranjanraj/furnivision/pkg/gemini"
	"github.com/shashiranjanraj/furnivision/pkg/workerpool"
)

func dataProduct() models.Product {
	p := models.SampleProducts()[0]
	p.Image = "data:image/jpeg;base64,UFJPRA=="
	return p
}

func newVisualizer(t *testing.T, gen Generator, workers int) *VisualizerService {
	t.Helper()
	pool := workerpool.New(workers)
	t.Cleanup(pool.Shutdown)
	v := NewVisualizerService(gen, pool)
	v.tick = 5 * time.Millisecond
	return v
}

func waitTerminal(t *testing.T, v *VisualizerService, id, owner string) JobState {
	t.Helper()
	var st JobState
	require.Eventually(t, func() bool {
		var err error
		st, err = v.Job(id, owner)
		return err == nil && st.Terminal()
	}, 2*time.Second, 5*time.Millisecond)
	return st
}

func TestNextProgress(t *testing.T) {
	assert.Equal(t, 7.5, NextProgress(5, 2.5))
	assert.Equal(t, 98.0, NextProgress(98, 4))
	assert.Equal(t, 99.5, NextProgress(99.5, 4))
	assert.InDelta(t, 101.9, NextProgress(97.9, 4), 0.001)
}

func TestProgressMessage(t *testing.T) {
	assert.Equal(t, "Analyzing room dimensions...", ProgressMessage(0))
	assert.Equal(t, "Matching ambient lighting...", ProgressMessage(17))
	assert.Equal(t, "Finalizing visual placement...", ProgressMessage(99))
	assert.Equal(t, "Finalizing visual placement...", ProgressMessage(120))
}

func TestGeneratePlacement_PartsAndResult(t *testing.T) {
	gen := &mockGenerator{}
	p := dataProduct()
	gen.On("GenerateContent", mock.Anything, "gemini-2.5-flash-image", mock.MatchedBy(func(req gemini.Request) bool {
		parts := req.Contents[0].Parts
		return len(parts) == 3 &&
			parts[0].InlineData.Data == "Uk9PTQ==" &&
			parts[1].InlineData.Data == "UFJPRA==" &&
			parts[2].Text == placementPrompt(p)
	})).Return(imageResponse("UE5H"), nil)

	v := newVisualizer(t, gen, 1)
	out, err := v.GeneratePlacement(context.Background(), "data:image/jpeg;base64,Uk9PTQ==", p)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,UE5H", out)
	assert.Contains(t, placementPrompt(p), `place the furniture piece "Elowen Lounge Chair"`)
	assert.Contains(t, placementPrompt(p), "    - Style: Mid-Century Modern")
}

func TestGeneratePlacement_FetchesURLImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok.jpg" {
			w.Write([]byte("ABC"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	var seen [][]gemini.Part
	gen := &mockGenerator{}
	gen.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { seen = append(seen, args.Get(2).(gemini.Request).Contents[0].Parts) }).
		Return(imageResponse("UE5H"), nil)
	v := newVisualizer(t, gen, 1)
	v.images = newImageClient(1<<20, nil)

	p := models.SampleProducts()[1]
	p.Image = srv.URL + "/ok.jpg"
	_, err := v.GeneratePlacement(context.Background(), "Uk9PTQ==", p)
	require.NoError(t, err)

	p.Image = srv.URL + "/missing.jpg"
	_, err = v.GeneratePlacement(context.Background(), "Uk9PTQ==", p)
	require.NoError(t, err)

	require.Len(t, seen, 2)
	require.Len(t, seen[0], 3)
	assert.Equal(t, "QUJD", seen[0][1].InlineData.Data)
	assert.Len(t, seen[1], 2, "failed fetch drops the product image")
}

func TestProductImage_KeepsBytesExact(t *testing.T) {
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0x01, 0x02, 0xFF, 0xD9, 0x0A, 0x20}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(jpeg)
	}))
	defer srv.Close()

	v := newVisualizer(t, &mockGenerator{}, 1)
	v.images = newImageClient(1<<20, nil)

	data, ok := v.productImage(context.Background(), srv.URL+"/chair.jpg")
	require.True(t, ok)
	assert.Equal(t, "/9j/AQL/2Qog", data)
}

func TestProductImage_OversizedIsDropped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte{0xAB}, 64))
	}))
	defer srv.Close()

	v := newVisualizer(t, &mockGenerator{}, 1)
	v.images = newImageClient(32, nil)
	_, ok := v.productImage(context.Background(), srv.URL+"/huge.jpg")
	assert.False(t, ok)

	v.images = newImageClient(64, nil)
	_, ok = v.productImage(context.Background(), srv.URL+"/huge.jpg")
	assert.True(t, ok)
}

func TestProductImage_InternalHostsAreRefused(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("secret"))
	}))
	defer srv.Close()

	v := newVisualizer(t, &mockGenerator{}, 1)
	_, ok := v.productImage(context.Background(), srv.URL+"/latest/meta-data")
	assert.False(t, ok)
	assert.Zero(t, hits, "loopback server never reached")

	for _, addr := range []string{
		"127.0.0.1:80", "[::1]:443", "10.1.2.3:80", "172.16.0.9:80", "192.168.1.1:80",
		"169.254.169.254:80", "[fe80::1]:80", "0.0.0.0:80", "[::ffff:127.0.0.1]:80",
	} {
		assert.ErrorIs(t, publicOnly("tcp", addr, nil), errPrivateHost, addr)
	}
	assert.NoError(t, publicOnly("tcp", "93.184.216.34:443", nil))
	assert.NoError(t, publicOnly("tcp", "[2606:4700::1111]:443", nil))
}

func TestGeneratePlacement_Failures(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).Return(textResponse("sorry"), nil).Once()
	gen.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("timeout")).Once()
	v := newVisualizer(t, gen, 1)

	_, err := v.GeneratePlacement(context.Background(), "Uk9PTQ==", dataProduct())
	require.ErrorIs(t, err, ErrRendering)
	assert.Equal(t, MsgNoImage, MessageOf(err))

	_, err = v.GeneratePlacement(context.Background(), "Uk9PTQ==", dataProduct())
	require.ErrorIs(t, err, ErrRendering)
	assert.Equal(t, MsgRendering, MessageOf(err))
}

func TestVisualizerJob_CompletesAndIsOwnerScoped(t *testing.T) {
	release := make(chan struct{})
	gen := &mockGenerator{}
	gen.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(imageResponse("UE5H"), nil)
	v := newVisualizer(t, gen, 1)

	st, err := v.Start(context.Background(), "u1", "Uk9PTQ==", dataProduct())
	require.NoError(t, err)
	assert.Equal(t, JobProcessing, st.Status)
	assert.Equal(t, "Initializing AI...", st.Message)
	assert.Equal(t, "p1", st.ProductID)

	require.Eventually(t, func() bool {
		cur, _ := v.Job(st.ID, "u1")
		return cur.Progress > 0
	}, time.Second, 5*time.Millisecond, "ticker advances progress")

	_, err = v.Job(st.ID, "someone-else")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, v.InFlight())

	close(release)
	done := waitTerminal(t, v, st.ID, "u1")
	assert.Equal(t, JobDone, done.Status)
	assert.Equal(t, 100, done.Progress)
	assert.Equal(t, "Done", done.Message)
	assert.Equal(t, "data:image/png;base64,UE5H", done.Result)
	assert.Zero(t, v.InFlight())
}

func TestVisualizerJob_FailureRecordsMessage(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("boom"))
	v := newVisualizer(t, gen, 1)

	st, err := v.Start(context.Background(), "u1", "Uk9PTQ==", dataProduct())
	require.NoError(t, err)
	done := waitTerminal(t, v, st.ID, "u1")
	assert.Equal(t, JobFailed, done.Status)
	assert.Equal(t, MsgRendering, done.Error)
	assert.Empty(t, done.Result)
}

func TestVisualizerJob_FullPoolIsBusy(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	gen := &mockGenerator{}
	gen.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(imageResponse("UE5H"), nil)
	v := newVisualizer(t, gen, 1)

	// one running plus a queue of two fills a single-worker pool
	var busy error
	for i := 0; i < 5 && busy == nil; i++ {
		_, busy = v.Start(context.Background(), "u1", "Uk9PTQ==", dataProduct())
	}
	require.ErrorIs(t, busy, ErrBusy)
	assert.Equal(t, http.StatusTooManyRequests, StatusOf(busy))
}

func TestVisualizerJob_RejectsEmptyRoom(t *testing.T) {
	v := newVisualizer(t, &mockGenerator{}, 1)
	_, err := v.Start(context.Background(), "u1", "data:image/jpeg;base64,", dataProduct())
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestVisualizer_SubscribeAndPurge(t *testing.T) {
	release := make(chan struct{})
	gen := &mockGenerator{}
	gen.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(imageResponse("UE5H"), nil)
	v := newVisualizer(t, gen, 1)
	v.tick = time.Hour

	st, err := v.Start(context.Background(), "u1", "Uk9PTQ==", dataProduct())
	require.NoError(t, err)

	_, notify, cancel, err := v.Subscribe(st.ID, "u1")
	require.NoError(t, err)
	defer cancel()
	_, _, _, err = v.Subscribe(st.ID, "u2")
	assert.ErrorIs(t, err, ErrNotFound)

	close(release)
	waitTerminal(t, v, st.ID, "u1")
	select {
	case <-notify:
	case <-time.After(time.Second):
		t.Fatal("no notification")
	}

	assert.Zero(t, v.Purge(time.Hour), "recent jobs are kept")
	assert.Equal(t, 1, v.Purge(0))
	_, err = v.Job(st.ID, "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}
