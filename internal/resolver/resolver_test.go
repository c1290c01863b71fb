package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"thirdcoast.systems/fetchbox/internal/fetcherr"
	"thirdcoast.systems/fetchbox/internal/resolver/mocks"
	"thirdcoast.systems/fetchbox/pkg/ytdlp"
)

func newTestResolver(t *testing.T) (*Resolver, *mocks.MockProber, *mocks.MockPageFetcher) {
	ctrl := gomock.NewController(t)
	prober := mocks.NewMockProber(ctrl)
	pages := mocks.NewMockPageFetcher(ctrl)
	r := New(prober, pages, nil)
	r.newID = func() string { return "deadbeef" }
	return r, prober, pages
}

func TestResolve_SingleVideo(t *testing.T) {
	r, prober, _ := newTestResolver(t)
	url := "https://example.com/watch?v=abc123"
	prober.EXPECT().Probe(gomock.Any(), url).
		Return([]byte(`{"id":"abc123","title":"Clip","webpage_url":"https://example.com/watch?v=abc123","_type":"video"}`), nil)

	res, err := r.Resolve(context.Background(), url)
	require.NoError(t, err)
	require.True(t, res.Single())
	require.Equal(t, "Clip", res.Meta.Title)
	require.Len(t, res.Entries, 1)
	require.Equal(t, url, res.Entries[0].PageURL())
}

func TestResolve_DeduplicatesFirstSeen(t *testing.T) {
	r, prober, _ := newTestResolver(t)
	url := "https://example.com/playlist?list=1"
	prober.EXPECT().Probe(gomock.Any(), url).Return([]byte(`{
		"_type":"playlist","title":"Mix",
		"entries":[
			{"id":"a","url":"https://example.com/a","title":"A"},
			{"id":"b","url":"https://example.com/b","title":"B"},
			{"id":"a","url":"https://example.com/a2","title":"A again"},
			{"url":"https://example.com/no-id"}
		]}`), nil)

	res, err := r.Resolve(context.Background(), url)
	require.NoError(t, err)
	require.False(t, res.Single())
	require.True(t, res.Meta.IsCollection)
	require.Equal(t, "Mix", res.Meta.Title)

	var ids []string
	for _, e := range res.Entries {
		ids = append(ids, e.ID)
	}
	require.Equal(t, []string{"a", "b"}, ids)
	require.Equal(t, "https://example.com/a", res.Entries[0].BatchURL())
}

func TestResolve_NestedAndTransparent(t *testing.T) {
	r, prober, _ := newTestResolver(t)
	root := "https://example.com/channel"
	gomock.InOrder(
		prober.EXPECT().Probe(gomock.Any(), root).Return([]byte(`{
			"_type":"playlist","title":"Channel",
			"entries":[
				{"id":"1","url":"https://example.com/1"},
				{"_type":"playlist","entries":[
					{"id":"2","url":"https://example.com/2"},
					{"_type":"playlist","entries":[{"id":"3","url":"https://example.com/3"}]}
				]},
				{"_type":"url_transparent","url":"https://example.com/tab"},
				{"id":"4","url":"https://example.com/4"}
			]}`), nil),
		prober.EXPECT().Probe(gomock.Any(), "https://example.com/tab").Return([]byte(`{
			"_type":"playlist","title":"Tab",
			"entries":[
				{"id":"5","url":"https://example.com/5"},
				{"_type":"url_transparent","url":"https://example.com/channel"}
			]}`), nil),
	)

	res, err := r.Resolve(context.Background(), root)
	require.NoError(t, err)
	require.Equal(t, "Channel", res.Meta.Title)

	var ids []string
	for _, e := range res.Entries {
		ids = append(ids, e.ID)
	}
	require.Equal(t, []string{"1", "2", "3", "4", "5"}, ids)
}

func TestResolve_UnparseableMetadata(t *testing.T) {
	r, prober, _ := newTestResolver(t)
	url := "https://example.com/weird"
	prober.EXPECT().Probe(gomock.Any(), url).Return([]byte("not json"), nil)

	res, err := r.Resolve(context.Background(), url)
	require.ErrorIs(t, err, fetcherr.ErrResolution)
	require.Equal(t, "No downloadable videos found.", err.Error())
	require.Equal(t, "Content from "+url, res.Meta.Title)
	require.True(t, res.Meta.IsCollection)
}

func TestResolve_ProbeFailureIsFatal(t *testing.T) {
	r, prober, _ := newTestResolver(t)
	url := "https://example.com/private"
	prober.EXPECT().Probe(gomock.Any(), url).
		Return(nil, &ytdlp.ExecError{ExitCode: 1, Stderr: "ERROR: Private video", Cause: errors.New("exit status 1")})

	_, err := r.Resolve(context.Background(), url)
	require.ErrorIs(t, err, fetcherr.ErrResolution)
	require.Equal(t, "Metadata fetch for https://example.com/private failed. Stderr: ERROR: Private video", err.Error())
}

func TestResolve_FacebookTitle(t *testing.T) {
	r, prober, _ := newTestResolver(t)
	url := "https://www.facebook.com/watch/?v=42"
	prober.EXPECT().Title(gomock.Any(), url).Return("12K views · Funny cat ｜ Cat Page", nil)

	res, err := r.Resolve(context.Background(), url)
	require.NoError(t, err)
	require.True(t, res.Single())
	require.Equal(t, "Cat Page - 12K views · Funny cat", res.Entries[0].Title)
	require.Equal(t, url, res.Entries[0].PageURL())
}

func TestResolve_FacebookFallbacks(t *testing.T) {
	r, prober, _ := newTestResolver(t)
	url := "https://www.facebook.com/watch/?v=43"
	prober.EXPECT().Title(gomock.Any(), url).Return("", nil)

	res, err := r.Resolve(context.Background(), url)
	require.NoError(t, err)
	require.Equal(t, "Unknown Uploader - Facebook-Video-deadbeef", res.Entries[0].Title)

	prober.EXPECT().Title(gomock.Any(), url).Return("", errors.New("exit status 1"))
	_, err = r.Resolve(context.Background(), url)
	require.ErrorIs(t, err, fetcherr.ErrResolution)
	require.Equal(t, "Could not fetch title for Facebook video.", err.Error())
}

func TestResolve_SnapchatScrape(t *testing.T) {
	r, _, pages := newTestResolver(t)
	url := "https://www.snapchat.com/spotlight/xyz"
	pages.EXPECT().Page(gomock.Any(), url).Return([]byte(
		`<html><head><link data-x="1" rel="preload" href="https://cf-st.sc-cdn.net/d/v.mp4?a=1&amp;b=2" as="video"></head></html>`), nil)

	res, err := r.Resolve(context.Background(), url)
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	require.True(t, res.Entries[0].Direct)
	require.Equal(t, "https://cf-st.sc-cdn.net/d/v.mp4?a=1&b=2", res.Entries[0].URL)
	require.Equal(t, "Snapchat - Spotlight Video", res.Entries[0].Title)

	pages.EXPECT().Page(gomock.Any(), url).Return([]byte(`<html></html>`), nil)
	_, err = r.Resolve(context.Background(), url)
	require.Equal(t, "Could not find direct video link in Snapchat page.", err.Error())
}

func TestSplitTitle(t *testing.T) {
	title, uploader := splitTitle("a ｜ b ｜ c")
	require.Equal(t, "b", title)
	require.Equal(t, "c", uploader)

	title, uploader = splitTitle("just a title")
	require.Equal(t, "just a title", title)
	require.Equal(t, "Unknown Uploader", uploader)
}
