// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockPublisher is a testify mock of the SNS client.
type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, params)
	output, _ := args.Get(0).(*sns.PublishOutput)
	return output, args.Error(1)
}

var otpMessage = Message{
	To:       "alice@example.com",
	Username: "alice",
	Subject:  "Your Elib verification code",
	Body:     "Your verification code is 483921.",
}

/*
TestSNSPublisher_Send verifies topic, body and routing attributes.
*/
func TestSNSPublisher_Send(t *testing.T) {
	client := &mockPublisher{}
	publisher := &SNSPublisher{client: client, topicARN: "arn:aws:sns:us-east-1:000000000000:otp"}

	client.On("Publish", mock.Anything, mock.MatchedBy(func(input *sns.PublishInput) bool {
		return aws.ToString(input.TopicArn) == "arn:aws:sns:us-east-1:000000000000:otp" &&
			aws.ToString(input.Message) == otpMessage.Body &&
			aws.ToString(input.Subject) == otpMessage.Subject &&
			aws.ToString(input.MessageAttributes["email"].StringValue) == "alice@example.com" &&
			aws.ToString(input.MessageAttributes["username"].StringValue) == "alice"
	})).Return(&sns.PublishOutput{MessageId: aws.String("m-1")}, nil).Once()

	require.NoError(t, publisher.Send(context.Background(), otpMessage))
	client.AssertExpectations(t)
}

/*
TestSNSPublisher_SendFailure verifies publish errors are wrapped and surfaced.
*/
func TestSNSPublisher_SendFailure(t *testing.T) {
	client := &mockPublisher{}
	publisher := &SNSPublisher{client: client, topicARN: "arn:topic"}
	cause := errors.New("throttled")

	client.On("Publish", mock.Anything, mock.Anything).Return(nil, cause).Once()

	err := publisher.Send(context.Background(), otpMessage)
	assert.ErrorIs(t, err, cause)
}

/*
TestSenders_RejectEmptyMessages verifies no channel accepts a blank recipient.
*/
func TestSenders_RejectEmptyMessages(t *testing.T) {
	senders := map[string]Sender{
		"log":  NewLogSender(slog.Default()),
		"sns":  &SNSPublisher{client: &mockPublisher{}},
		"smtp": NewSMTPMailer(SMTPConfig{Host: "127.0.0.1", Port: 1}),
	}

	for name, sender := range senders {
		t.Run(name, func(t *testing.T) {
			err := sender.Send(context.Background(), Message{Body: "x"})
			assert.ErrorIs(t, err, ErrInvalidMessage)
		})
	}
}

/*
TestLogSender_BodyOnlyAtDebug verifies the passcode body stays out of info-level output.
*/
func TestLogSender_BodyOnlyAtDebug(t *testing.T) {
	var buffer bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buffer, &slog.HandlerOptions{Level: slog.LevelInfo}))

	require.NoError(t, NewLogSender(logger).Send(context.Background(), otpMessage))

	assert.Contains(t, buffer.String(), "notification_logged")
	assert.NotContains(t, buffer.String(), "483921")
}

/*
TestBuildMail verifies headers, CRLF endings and header injection stripping.
*/
func TestBuildMail(t *testing.T) {
	message := otpMessage
	message.Subject = "Hello\r\nBcc: victim@example.com"
	message.Body = "line one\nline two"

	raw := string(buildMail("no-reply@elib.app", message))

	assert.Contains(t, raw, "From: no-reply@elib.app\r\n")
	assert.Contains(t, raw, "To: alice@example.com\r\n")
	assert.Contains(t, raw, "Subject: HelloBcc: victim@example.com\r\n")
	assert.NotContains(t, raw, "\r\nBcc:")
	assert.True(t, strings.HasSuffix(raw, "\r\n\r\nline one\r\nline two"))
}

// fakeSMTPServer accepts a single session and records the DATA payload.
type fakeSMTPServer struct {
	listener net.Listener
	mu       sync.Mutex
	data     string
	rcpt     string
	done     chan struct{}
}

func startFakeSMTPServer(t *testing.T) *fakeSMTPServer {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := &fakeSMTPServer{listener: listener, done: make(chan struct{})}
	go server.serve()
	t.Cleanup(func() { _ = listener.Close() })
	return server
}

func (server *fakeSMTPServer) serve() {
	defer close(server.done)

	conn, err := server.listener.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	text := textproto.NewConn(conn)
	_ = text.PrintfLine("220 fake.smtp ready")

	for {
		line, err := text.ReadLine()
		if err != nil {
			return
		}
		command := strings.ToUpper(strings.SplitN(line, " ", 2)[0])

		switch command {
		case "EHLO", "HELO":
			_ = text.PrintfLine("250-fake.smtp")
			_ = text.PrintfLine("250 8BITMIME")
		case "MAIL":
			_ = text.PrintfLine("250 OK")
		case "RCPT":
			server.mu.Lock()
			server.rcpt = line
			server.mu.Unlock()
			_ = text.PrintfLine("250 OK")
		case "DATA":
			_ = text.PrintfLine("354 go ahead")
			lines, err := text.ReadDotLines()
			if err != nil {
				return
			}
			server.mu.Lock()
			server.data = strings.Join(lines, "\n")
			server.mu.Unlock()
			_ = text.PrintfLine("250 queued")
		case "QUIT":
			_ = text.PrintfLine("221 bye")
			return
		default:
			_ = text.PrintfLine("502 not implemented")
		}
	}
}

/*
TestSMTPMailer_Send runs a full session against an in-process relay.
*/
func TestSMTPMailer_Send(t *testing.T) {
	server := startFakeSMTPServer(t)
	host, port, err := net.SplitHostPort(server.listener.Addr().String())
	require.NoError(t, err)

	portNumber, err := net.LookupPort("tcp", port)
	require.NoError(t, err)

	mailer := NewSMTPMailer(SMTPConfig{Host: host, Port: portNumber, From: "no-reply@elib.app"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, mailer.Send(ctx, otpMessage))
	<-server.done

	server.mu.Lock()
	defer server.mu.Unlock()
	assert.Contains(t, server.rcpt, "alice@example.com")
	assert.Contains(t, server.data, "Your verification code is 483921.")
}

/*
TestSMTPMailer_DialFailure verifies an unreachable relay returns an error.
*/
func TestSMTPMailer_DialFailure(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	address := listener.Addr().(*net.TCPAddr)
	require.NoError(t, listener.Close())

	mailer := NewSMTPMailer(SMTPConfig{Host: "127.0.0.1", Port: address.Port, From: "no-reply@elib.app"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.Error(t, mailer.Send(ctx, otpMessage))
}
