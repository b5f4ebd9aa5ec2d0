package data

import "github.com/codemind-go/internal/models"

// Seed content for the built-in datasets. Each Catalog gets its own copy.

func codebaseDataset() []models.SearchResult {
	return []models.SearchResult{
		{
			Source: models.Source{ID: "codebase-auth", FileName: "auth.ts", Path: "src/lib/auth"},
			Content: `
import { NextApiRequest, NextApiResponse } from 'next';
import { IronSession, getIronSession } from 'iron-session';
import { SiweMessage, generateNonce } from 'siwe';

export const sessionOptions: IronSessionOptions = {
  password: process.env.SECRET_COOKIE_PASSWORD as string,
  cookieName: 'myapp-session',
  cookieOptions: {
    secure: process.env.NODE_ENV === 'production',
  },
};

export async function verifyLogin(req: NextApiRequest, res: NextApiResponse) {
  const session = await getIronSession(req, res, sessionOptions);
  const { message, signature } = req.body;
  const siweMessage = new SiweMessage(message);
  try {
    const fields = await siweMessage.verify({ signature });
    if (fields.data.nonce !== session.nonce) {
      return res.status(422).json({ message: 'Invalid nonce.' });
    }
    session.siwe = fields.data;
    await session.save();
    res.json({ ok: true });
  } catch (_error) {
    res.json({ ok: false });
  }
}
`,
			Score: 0.95,
		},
		{
			Source: models.Source{ID: "codebase-user-model", FileName: "user.model.ts", Path: "src/models"},
			Content: `
import mongoose from 'mongoose';

const UserSchema = new mongoose.Schema({
  walletAddress: { type: String, required: true, unique: true },
  username: { type: String },
  createdAt: { type: Date, default: Date.now }
});

export default mongoose.models.User || mongoose.model('User', UserSchema);
`,
			Score: 0.88,
		},
		{
			Source: models.Source{ID: "codebase-api", FileName: "api.ts", Path: "src/services"},
			Content: `
import axios from 'axios';

const api = axios.create({
  baseURL: '/api',
});

export const fetchUserProfile = async (userId: string) => {
  const response = await api.get(` + "`/users/${userId}`" + `);
  return response.data;
};

export const updateUserProfile = async (userId: string, data: any) => {
  const response = await api.put(` + "`/users/${userId}`" + `, data);
  return response.data;
};
`,
			Score: 0.75,
		},
	}
}

func researchDataset() []models.SearchResult {
	return []models.SearchResult{
		{
			Source:  models.Source{ID: "research-attention", FileName: "Attention Is All You Need", Path: "Vaswani et al., 2017"},
			Content: "Abstract: The dominant sequence transduction models are based on complex recurrent or convolutional neural networks in an encoder-decoder configuration. The best performing models also connect the encoder and decoder through an attention mechanism. We propose a new simple network architecture, the Transformer, based solely on attention mechanisms, dispensing with recurrence and convolutions entirely. Experiments on two machine translation tasks show these models to be superior in quality while being more parallelizable and requiring significantly less time to train.",
			Score:   0.98,
		},
		{
			Source:  models.Source{ID: "research-bert", FileName: "BERT: Pre-training of Deep Bidirectional Transformers", Path: "Devlin et al., 2018"},
			Content: "Abstract: We introduce a new language representation model called BERT, which stands for Bidirectional Encoder Representations from Transformers. Unlike recent language representation models, BERT is designed to pre-train deep bidirectional representations from unlabeled text by jointly conditioning on both left and right context in all layers. As a result, the pre-trained BERT model can be fine-tuned with just one additional output layer to create state-of-the-art models for a wide range of tasks, such as question answering and language inference, without substantial task-specific architecture modifications.",
			Score:   0.95,
		},
	}
}

func supportDataset() []models.SearchResult {
	return []models.SearchResult{
		{
			Source:  models.Source{ID: "support-login", FileName: "Login Issue", Path: "Ticket #48151"},
			Content: "User: I'm unable to log in. I keep getting an \"Invalid Credentials\" error, but I'm sure my password is correct. I've tried resetting it, but the link seems to be expired. Can you help?\n\nAgent: It seems there was an issue with our password reset token expiration. I've manually generated a new, 24-hour reset link for you. Please check your email.",
			Score:   0.92,
		},
		{
			Source:  models.Source{ID: "support-billing", FileName: "Billing Discrepancy", Path: "Ticket #62342"},
			Content: "User: Hi, I was charged twice for my subscription this month. My account ID is user-123. Please refund the extra charge.\n\nAgent: Apologies for the error. I've located the duplicate transaction and issued a full refund. It should appear in your account within 3-5 business days. We've also fixed the bug that caused this.",
			Score:   0.89,
		},
	}
}
