package api

import (
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

func baseHeaders() map[string]string {
	return map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Origin":  "*", // Or specific domain for CORS
		"Access-Control-Allow-Methods": "GET, POST, OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type",
	}
}

func respond(status int, v any) events.APIGatewayProxyResponse {
	resp := events.APIGatewayProxyResponse{StatusCode: status, Headers: baseHeaders()}
	if v == nil {
		return resp
	}
	body, err := json.Marshal(v)
	if err != nil {
		resp.StatusCode = http.StatusInternalServerError
		resp.Body = `{"error": "Failed to format response"}`
		return resp
	}
	resp.Body = string(body)
	return resp
}

func errorResponse(status int, msg string) events.APIGatewayProxyResponse {
	return respond(status, map[string]string{"error": msg})
}
