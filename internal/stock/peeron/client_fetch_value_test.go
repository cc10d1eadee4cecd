package peeron_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"geohashd/internal/stock"
	"geohashd/internal/stock/peeron"
)

func TestFetchValue(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: the path carries the zero-padded date.
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, http.MethodGet, req.Method)
			require.True(t, strings.HasSuffix(req.URL.Path, "/2009/11/30"), "unexpected path: %s", req.URL.Path)

			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader("10309.92\n")),
			}, nil
		}).
		Times(1)

	client, err := peeron.NewClient(peeron.WithHTTPClient(httpClient))
	require.NoError(t, err)

	value, err := client.FetchValue(t.Context(), stock.Date{Year: 2009, Month: 11, Day: 30})
	require.NoError(t, err)
	require.Equal(t, "10309.92", value)
}

func TestFetchValue_ZeroPadsSingleDigitMonthAndDay(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.True(t, strings.HasSuffix(req.URL.Path, "/2008/05/03"), "unexpected path: %s", req.URL.Path)

			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader("12593.87")),
			}, nil
		}).
		Times(1)

	client, err := peeron.NewClient(peeron.WithHTTPClient(httpClient))
	require.NoError(t, err)

	_, err = client.FetchValue(t.Context(), stock.Date{Year: 2008, Month: 5, Day: 3})
	require.NoError(t, err)
}

func TestFetchValue_NotFound(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(&http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(strings.NewReader("not found")),
		}, nil).
		Times(1)

	client, err := peeron.NewClient(peeron.WithHTTPClient(httpClient))
	require.NoError(t, err)

	_, err = client.FetchValue(t.Context(), stock.Date{Year: 2031, Month: 1, Day: 1})
	require.ErrorIs(t, err, stock.ErrNotPosted)
}

func TestFetchValue_ServerError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(&http.Response{
			StatusCode: http.StatusInternalServerError,
			Body:       io.NopCloser(strings.NewReader("boom")),
		}, nil).
		Times(1)

	client, err := peeron.NewClient(peeron.WithHTTPClient(httpClient))
	require.NoError(t, err)

	_, err = client.FetchValue(t.Context(), stock.Date{Year: 2009, Month: 11, Day: 30})
	require.Error(t, err)
	require.NotErrorIs(t, err, stock.ErrNotPosted)
}

func TestFetchValue_UnparseableBody(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(&http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader("not a number")),
		}, nil).
		Times(1)

	client, err := peeron.NewClient(peeron.WithHTTPClient(httpClient))
	require.NoError(t, err)

	_, err = client.FetchValue(t.Context(), stock.Date{Year: 2009, Month: 11, Day: 30})
	require.ErrorIs(t, err, stock.ErrBadData)
}

func TestFetchValue_CanceledContext(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	ctx, cancel := context.WithCancel(t.Context())

	// The transport reports an error once the context is canceled; the
	// client must surface the cancellation, not a generic failure.
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			cancel()
			return nil, req.Context().Err()
		}).
		Times(1)

	client, err := peeron.NewClient(peeron.WithHTTPClient(httpClient))
	require.NoError(t, err)

	_, err = client.FetchValue(ctx, stock.Date{Year: 2009, Month: 11, Day: 30})
	require.ErrorIs(t, err, context.Canceled)
}
