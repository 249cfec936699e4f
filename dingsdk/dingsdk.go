package dingsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type DingContent struct {
	Content string `json:"content"`
}
type DingAt struct {
	IsAtAll bool `json:"isAtAll"`
}
type DingNotify struct {
	MsgType string      `json:"msgtype"`
	Text    DingContent `json:"text"`
	At      DingAt      `json:"at"`
}

type DingResult struct {
	ErrCode int64  `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

func NewTextNotify(content string) *DingNotify {
	return &DingNotify{
		MsgType: "text",
		Text: DingContent{
			Content: content,
		},
		At: DingAt{
			IsAtAll: false,
		},
	}
}

type DingSdk struct {
	url        string
	client     *http.Client
	retries    uint64
	newBackOff func() backoff.BackOff
}

func NewDingSdk(url string) *DingSdk {
	sdk := &DingSdk{
		url:     url,
		client:  &http.Client{Timeout: 10 * time.Second},
		retries: 3,
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
	return sdk
}

// Notify posts to the webhook. Transport failures and 5xx replies are
// retried; a reply the robot rejected is not.
func (sdk *DingSdk) Notify(ctx context.Context, notify *DingNotify) (*DingResult, error) {
	requestJson, err := json.Marshal(notify)
	if err != nil {
		return nil, err
	}
	var dingResult *DingResult
	operation := func() error {
		result, err := sdk.post(ctx, requestJson)
		if err != nil {
			return err
		}
		dingResult = result
		return nil
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(sdk.newBackOff(), sdk.retries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return dingResult, nil
}

func (sdk *DingSdk) post(ctx context.Context, body []byte) (*DingResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sdk.url, bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Accepts", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := sdk.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("response status code: %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, backoff.Permanent(fmt.Errorf("response status code: %d", resp.StatusCode))
	}
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	dingResult := new(DingResult)
	if err := json.Unmarshal(respBody, dingResult); err != nil {
		return nil, backoff.Permanent(err)
	}
	if dingResult.ErrCode != 0 || dingResult.ErrMsg != "ok" {
		return nil, backoff.Permanent(fmt.Errorf("code: %d, err: %s", dingResult.ErrCode, dingResult.ErrMsg))
	}
	return dingResult, nil
}
