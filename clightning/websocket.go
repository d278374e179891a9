package clightning

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"net/http"
	"time"

	"github.com/blocktank/lnworker/lightning"
	"github.com/blocktank/lnworker/log"
	"github.com/gorilla/websocket"
)

type wsDialer struct {
	dialer *websocket.Dialer
	header http.Header
}

func newWSDialer(tlsConfig *tls.Config, macaroon string) wsDialer {
	header := http.Header{}
	header.Set("macaroon", macaroon)
	header.Set("encodingtype", "hex")
	return wsDialer{
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
			TLSClientConfig:  tlsConfig,
		},
		header: header,
	}
}

// SubscribeToInvoices follows the websocket feed of the REST server. Every
// invoice_payment notification is resolved to the full invoice.
func (c *Client) SubscribeToInvoices(ctx context.Context) (*lightning.Stream[lightning.Invoice], error) {
	if c.websocket == "" {
		return nil, lightning.ErrNotSupported
	}
	ctx, cancel := context.WithCancel(ctx)
	conn, _, err := c.wsDialer.dialer.DialContext(ctx, c.websocket, c.wsDialer.header)
	if err != nil {
		cancel()
		return nil, nodeErr("websocket", err)
	}
	log.Infof("[InvoiceFeed]: Connected to %s", c.websocket)

	out := lightning.NewStream[lightning.Invoice](cancel)
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	go c.readInvoiceFeed(ctx, conn, out)
	return out, nil
}

func (c *Client) readInvoiceFeed(ctx context.Context, conn *websocket.Conn, out *lightning.Stream[lightning.Invoice]) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				log.Infof("[InvoiceFeed]: Stream closed")
				out.Finish(nil)
				return
			}
			log.Infof("[InvoiceFeed]: Stream closed with err: %v", err)
			out.Finish(nodeErr("websocket", err))
			return
		}

		var msg invoicePaymentMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Debugf("[InvoiceFeed]: dropping message: %v", err)
			continue
		}
		if msg.InvoicePayment == nil {
			continue
		}

		inv, err := c.GetInvoice(ctx, msg.InvoicePayment.Label)
		if err != nil {
			log.Errorf("[InvoiceFeed]: could not resolve invoice %s: %v", msg.InvoicePayment.Label, err)
			continue
		}
		if !out.Send(ctx, *inv) {
			out.Finish(nil)
			return
		}
	}
}
