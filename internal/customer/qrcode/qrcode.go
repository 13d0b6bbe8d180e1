package qrcode

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"
)

// TabRef identifies a printed tab card.
type TabRef struct {
	CustomerID string `json:"customerId"`
	EventID    string `json:"eventId"`
}

type QRGenerator struct {
	secret  []byte
	baseURL string
}

func NewQRGenerator(secret, baseURL string) *QRGenerator {
	hashed := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	return &QRGenerator{secret: hashed[:], baseURL: strings.TrimRight(baseURL, "/")}
}

// TabURL is the link printed on the card: the public tab page plus an
// encrypted reference the bar can scan back.
func (q *QRGenerator) TabURL(ref TabRef) (string, error) {
	token, err := q.Encrypt(ref)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/tabs/%s?ref=%s", q.baseURL, url.PathEscape(ref.CustomerID), token), nil
}

// GenerateTabQR renders the tab URL as a 256px PNG.
func (q *QRGenerator) GenerateTabQR(ref TabRef) ([]byte, error) {
	link, err := q.TabURL(ref)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(link, qrcode.Medium, 256)
}

func (q *QRGenerator) Encrypt(ref TabRef) (string, error) {
	data, err := json.Marshal(ref)
	if err != nil {
		return "", err
	}
	return encryptAES(data, q.secret)
}

func (q *QRGenerator) Decrypt(token string) (TabRef, error) {
	var ref TabRef
	data, err := decryptAES(token, q.secret)
	if err != nil {
		return ref, err
	}
	if err := json.Unmarshal(data, &ref); err != nil {
		return ref, fmt.Errorf("invalid tab reference: %w", err)
	}
	return ref, nil
}

func encryptAES(data []byte, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	ciphertext := make([]byte, aes.BlockSize+len(data))
	iv := ciphertext[:aes.BlockSize]

	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	stream := cipher.NewCFBEncrypter(block, iv)
	stream.XORKeyStream(ciphertext[aes.BlockSize:], data)

	return base64.URLEncoding.EncodeToString(ciphertext), nil
}

func decryptAES(token string, key []byte) ([]byte, error) {
	ciphertext, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < aes.BlockSize {
		return nil, errors.New("tab reference too short")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	data := make([]byte, len(ciphertext)-aes.BlockSize)
	stream := cipher.NewCFBDecrypter(block, ciphertext[:aes.BlockSize])
	stream.XORKeyStream(data, ciphertext[aes.BlockSize:])
	return data, nil
}
