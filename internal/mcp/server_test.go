package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iipviz/internal/model"
	"iipviz/internal/service"
)

type fakeService struct {
	payload *model.VisualizationPayload
	err     error
	query   string
}

func (f *fakeService) Visualize(ctx context.Context, req *model.VisualizeRequest) (*model.VisualizationPayload, error) {
	f.query = req.Query
	return f.payload, f.err
}

func (f *fakeService) Provinces() *model.ProvincesResponse {
	return &model.ProvincesResponse{Provinces: []string{"Bắc Ninh", "Hải Phòng"}, Records: 7}
}

type toolContent struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	Data     string `json:"data"`
	MIMEType string `json:"mimeType"`
}

type toolResponse struct {
	Result struct {
		Content []toolContent `json:"content"`
		IsError bool          `json:"isError"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func callTool(t *testing.T, srv *server.MCPServer, name string, args map[string]any) toolResponse {
	t.Helper()

	msg, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]any{
			"name":      name,
			"arguments": args,
		},
	})
	require.NoError(t, err)

	raw, err := json.Marshal(srv.HandleMessage(context.Background(), msg))
	require.NoError(t, err)

	var resp toolResponse
	require.NoError(t, json.Unmarshal(raw, &resp), string(raw))
	require.Nil(t, resp.Error)
	return resp
}

func TestVisualizeTool(t *testing.T) {
	svc := &fakeService{payload: &model.VisualizationPayload{
		Type:           "area",
		Province:       "Bắc Ninh",
		IndustrialType: model.TargetZone,
		Metric:         model.MetricArea,
		ChartKind:      model.ChartPie,
		Items:          []model.PayloadItem{{Index: 1, Name: "Khu công nghiệp Quế Võ"}},
		Chart:          "iVBORw0KGgo=",
		Text:           "Đã vẽ biểu đồ tròn về diện tích tại Bắc Ninh.",
	}}
	srv := NewServer(svc, "test", zerolog.Nop())

	resp := callTool(t, srv, "visualize_industrial_query", map[string]any{"query": "diện tích KCN Bắc Ninh"})

	assert.Equal(t, "diện tích KCN Bắc Ninh", svc.query)
	assert.False(t, resp.Result.IsError)
	require.Len(t, resp.Result.Content, 2)

	img := resp.Result.Content[0]
	assert.Equal(t, "image", img.Type)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, "iVBORw0KGgo=", img.Data)

	var payload model.VisualizationPayload
	require.NoError(t, json.Unmarshal([]byte(resp.Result.Content[1].Text), &payload))
	assert.Empty(t, payload.Chart)
	assert.Equal(t, model.ChartPie, payload.ChartKind)
	assert.Equal(t, 1, payload.Items[0].Index)
}

func TestVisualizeTool_PipelineError(t *testing.T) {
	srv := NewServer(&fakeService{err: &service.DataError{TargetType: model.TargetZone}}, "test", zerolog.Nop())

	resp := callTool(t, srv, "visualize_industrial_query", map[string]any{"query": "KCN ở Sao Hỏa"})
	assert.True(t, resp.Result.IsError)
	require.Len(t, resp.Result.Content, 1)
	assert.Contains(t, resp.Result.Content[0].Text, `"kind":"no_data"`)
}

func TestVisualizeTool_MissingQuery(t *testing.T) {
	srv := NewServer(&fakeService{}, "test", zerolog.Nop())
	resp := callTool(t, srv, "visualize_industrial_query", map[string]any{})
	assert.True(t, resp.Result.IsError)
}

func TestListProvincesTool(t *testing.T) {
	srv := NewServer(&fakeService{}, "", zerolog.Nop())

	resp := callTool(t, srv, "list_provinces", map[string]any{})
	require.Len(t, resp.Result.Content, 1)

	var got model.ProvincesResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Result.Content[0].Text), &got))
	assert.Equal(t, []string{"Bắc Ninh", "Hải Phòng"}, got.Provinces)
	assert.Equal(t, 7, got.Records)
}
